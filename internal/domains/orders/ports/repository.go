package ports

import (
	"context"
	"time"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
)

// CommitRequest is one order commit. RequestKey, when set, makes the commit
// replay-safe: a second commit with the same key returns the first order.
type CommitRequest struct {
	OwnerID     int64
	Lines       []domain.Line
	RequestKey  string
	RequestHash string
	NextNumber  domain.NumberGenerator
}

// Range bounds a history query. A nil From is unbounded; To is inclusive.
type Range struct {
	From *time.Time
	To   time.Time
}

// Repository persists orders and owns the atomic commit.
type Repository interface {
	// Commit re-reads stock, drafts the order, stores it with its items and
	// decrements stock as one unit of work. On any error nothing is changed.
	Commit(ctx context.Context, req CommitRequest) (*domain.Order, error)
	GetByNumber(ctx context.Context, ownerID int64, number string) (*domain.Order, error)
	// GetByRequestKey returns the order committed under key, or apperrors.ErrNotFound.
	GetByRequestKey(ctx context.Context, ownerID int64, key string) (*domain.Order, string, error)
	ListRecent(ctx context.Context, ownerID int64, limit int) ([]*domain.Order, error)
	ListInRange(ctx context.Context, ownerID int64, r Range) ([]*domain.Order, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID int64) error
}

// StockReader exposes the catalog to the order engine.
type StockReader interface {
	// Offer lists the owner's products with stock on hand, in catalog order.
	Offer(ctx context.Context, ownerID int64) ([]domain.OfferEntry, error)
	// Levels returns the current stock of the requested products owned by ownerID.
	// Unknown products are absent from the map.
	Levels(ctx context.Context, ownerID int64, productIDs []int64) (map[int64]domain.StockLevel, error)
}

// BasketStore holds in-progress baskets. Get reports apperrors.ErrNotFound for
// unknown and expired baskets.
type BasketStore interface {
	Save(ctx context.Context, basket *domain.Basket) error
	Get(ctx context.Context, key domain.Key) (*domain.Basket, error)
	Delete(ctx context.Context, key domain.Key) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID int64) error
}
