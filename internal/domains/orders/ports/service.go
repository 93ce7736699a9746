package ports

import (
	"context"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
)

// PlaceOrderInput is a direct order. IdempotencyKey is optional.
type PlaceOrderInput struct {
	OwnerID        int64
	Lines          []domain.Line
	IdempotencyKey string
}

// Selection picks basket products by 1-based offer position or by product id.
type Selection struct {
	Positions  []int
	ProductIDs []int64
}

// Service exposes order engine use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, ownerID int64, number string) (*domain.Order, error)
	ListRecentOrders(ctx context.Context, ownerID int64, limit int) ([]*domain.Order, error)

	BeginBasket(ctx context.Context, ownerID int64, conversationID string) (*domain.Basket, error)
	GetBasket(ctx context.Context, key domain.Key) (*domain.Basket, error)
	SelectProducts(ctx context.Context, key domain.Key, selection Selection) (*domain.Basket, error)
	EnterQuantities(ctx context.Context, key domain.Key, quantities []int64) (*domain.Basket, error)
	ConfirmBasket(ctx context.Context, key domain.Key) (*domain.Order, error)
	CancelBasket(ctx context.Context, key domain.Key) error
	PurgeExpiredBaskets(ctx context.Context) (int64, error)
}

// Committer runs the final commit step. The default commits in process; the
// workflow adapter runs it durably.
type Committer interface {
	Commit(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
}
