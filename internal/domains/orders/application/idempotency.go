package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
)

type normalizedLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// FingerprintLines hashes normalized order lines so a replayed request can be
// told apart from a different order sent under the same idempotency key.
func FingerprintLines(ownerID int64, lines []domain.Line) (string, error) {
	normalized := make([]normalizedLine, 0, len(lines))
	for _, line := range lines {
		normalized = append(normalized, normalizedLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	payload, err := json.Marshal(struct {
		OwnerID int64            `json:"ownerId"`
		Lines   []normalizedLine `json:"lines"`
	}{ownerID, normalized})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// BasketRequestKey is the idempotency key a basket confirm commits under. It is
// stable for the life of one basket, so a repeated confirm cannot commit twice.
func BasketRequestKey(basket *domain.Basket) string {
	return fmt.Sprintf("basket:%s:%d", basket.Key, basket.CreatedAt.UnixNano())
}
