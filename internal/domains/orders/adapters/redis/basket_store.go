// Package redis stores baskets in Redis and lets key expiry enforce the TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// DefaultPrefix namespaces basket keys.
const DefaultPrefix = "basket:"

var _ ports.BasketStore = (*BasketStore)(nil)

// BasketStore keeps one JSON document per basket.
type BasketStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewBasketStore(client redis.UniversalClient, prefix string) *BasketStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &BasketStore{client: client, prefix: prefix, now: time.Now}
}

// WithClock overrides the clock used to compute key TTLs.
func (s *BasketStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type offerDocument struct {
	ProductID     int64           `json:"productId"`
	Name          string          `json:"name"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	Available     int64           `json:"available"`
}

type basketDocument struct {
	OwnerID        int64           `json:"ownerId"`
	ConversationID string          `json:"conversationId"`
	State          string          `json:"state"`
	Offer          []offerDocument `json:"offer"`
	Selected       []int64         `json:"selected,omitempty"`
	Quantities     []int64         `json:"quantities,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	ExpiresAt      time.Time       `json:"expiresAt"`
}

func (s *BasketStore) Save(ctx context.Context, basket *domain.Basket) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	if basket == nil {
		return errors.New("basket is nil")
	}
	ttl := basket.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, basket.Key)
	}
	data, err := json.Marshal(toDocument(basket))
	if err != nil {
		return fmt.Errorf("encode basket: %w", err)
	}
	if err := s.client.Set(ctx, s.key(basket.Key), data, ttl).Err(); err != nil {
		return apperrors.Persistence("save basket", err)
	}
	return nil
}

func (s *BasketStore) Get(ctx context.Context, key domain.Key) (*domain.Basket, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("basket", key.String())
		}
		return nil, apperrors.Persistence("load basket", err)
	}
	var doc basketDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Persistence("decode basket", err)
	}
	return doc.toDomain(), nil
}

func (s *BasketStore) Delete(ctx context.Context, key domain.Key) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return apperrors.Persistence("delete basket", err)
	}
	return nil
}

// PurgeExpired is a no-op: Redis expires basket keys on its own.
func (s *BasketStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *BasketStore) DeleteByOwner(ctx context.Context, ownerID int64) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	pattern := s.prefix + strconv.FormatInt(ownerID, 10) + ":*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return apperrors.Persistence("scan baskets", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return apperrors.Persistence("delete baskets", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (s *BasketStore) key(key domain.Key) string {
	return s.prefix + key.String()
}

func (s *BasketStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis basket store not configured")
	}
	return nil
}

func toDocument(b *domain.Basket) basketDocument {
	doc := basketDocument{
		OwnerID:        b.Key.OwnerID,
		ConversationID: b.Key.ConversationID,
		State:          string(b.State),
		Offer:          make([]offerDocument, 0, len(b.Offer)),
		Selected:       b.Selected,
		Quantities:     b.Quantities,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		ExpiresAt:      b.ExpiresAt,
	}
	for _, e := range b.Offer {
		doc.Offer = append(doc.Offer, offerDocument(e))
	}
	return doc
}

func (d basketDocument) toDomain() *domain.Basket {
	b := &domain.Basket{
		Key:        domain.Key{OwnerID: d.OwnerID, ConversationID: d.ConversationID},
		State:      domain.State(d.State),
		Offer:      make([]domain.OfferEntry, 0, len(d.Offer)),
		Selected:   d.Selected,
		Quantities: d.Quantities,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
		ExpiresAt:  d.ExpiresAt.UTC(),
	}
	for _, e := range d.Offer {
		b.Offer = append(b.Offer, domain.OfferEntry(e))
	}
	return b
}
