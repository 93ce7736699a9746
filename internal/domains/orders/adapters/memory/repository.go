package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	catalogmemory "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Repository = (*Repository)(nil)

type storedOrder struct {
	order       *domain.Order
	requestKey  string
	requestHash string
}

// Repository keeps orders in memory and commits against the in-memory catalog,
// so stock checks, stock decrements and the order insert happen under one lock.
type Repository struct {
	mu      sync.RWMutex
	catalog *catalogmemory.Repository
	orders  map[int64]*storedOrder
	nextID  int64
	now     func() time.Time
}

// Option configures the repository.
type Option func(*Repository)

// WithClock overrides the clock used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(catalog *catalogmemory.Repository, opts ...Option) *Repository {
	r := &Repository{catalog: catalog, orders: map[int64]*storedOrder{}, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Commit(_ context.Context, req ports.CommitRequest) (*domain.Order, error) {
	if r.catalog == nil {
		return nil, errors.New("memory order repository has no catalog")
	}
	lines, err := domain.NormalizeLines(req.Lines)
	if err != nil {
		return nil, err
	}
	var committed *domain.Order
	err = r.catalog.WithStock(req.OwnerID, func(tx *catalogmemory.StockTx) error {
		stock := make(map[int64]domain.StockLevel, len(lines))
		for _, line := range lines {
			if p := tx.Product(line.ProductID); p != nil {
				stock[p.ID] = domain.StockLevel{
					ProductID:     p.ID,
					Name:          p.Name,
					PurchasePrice: p.PurchasePrice,
					SalePrice:     p.SalePrice,
					Available:     p.Quantity,
				}
			}
		}
		order, err := domain.Draft(req.OwnerID, lines, stock)
		if err != nil {
			return err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if req.RequestKey != "" && r.byRequestKeyLocked(req.OwnerID, req.RequestKey) != nil {
			return apperrors.Duplicate("order", "idempotencyKey", req.RequestKey)
		}
		number, err := r.uniqueNumberLocked(req.NextNumber)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := tx.Decrement(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		r.nextID++
		order.ID = r.nextID
		order.Number = number
		order.CreatedAt = r.now().UTC()
		r.orders[order.ID] = &storedOrder{order: order, requestKey: req.RequestKey, requestHash: req.RequestHash}
		committed = order.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

func (r *Repository) GetByNumber(_ context.Context, ownerID int64, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.orders {
		if stored.order.OwnerID == ownerID && stored.order.Number == number {
			return stored.order.Clone(), nil
		}
	}
	return nil, apperrors.NotFound("order", number)
}

func (r *Repository) GetByRequestKey(_ context.Context, ownerID int64, key string) (*domain.Order, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byRequestKeyLocked(ownerID, key)
	if stored == nil {
		return nil, "", apperrors.NotFound("order", key)
	}
	return stored.order.Clone(), stored.requestHash, nil
}

func (r *Repository) ListRecent(_ context.Context, ownerID int64, limit int) ([]*domain.Order, error) {
	list := r.list(ownerID, func(*domain.Order) bool { return true })
	sort.SliceStable(list, func(i, j int) bool { return newer(list[i], list[j]) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *Repository) ListInRange(_ context.Context, ownerID int64, rng ports.Range) ([]*domain.Order, error) {
	list := r.list(ownerID, func(o *domain.Order) bool {
		if rng.From != nil && o.CreatedAt.Before(*rng.From) {
			return false
		}
		return !o.CreatedAt.After(rng.To)
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, stored := range r.orders {
		if stored.order.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *Repository) DeleteByOwner(_ context.Context, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, stored := range r.orders {
		if stored.order.OwnerID == ownerID {
			delete(r.orders, id)
		}
	}
	return nil
}

func (r *Repository) list(ownerID int64, keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, stored := range r.orders {
		if stored.order.OwnerID == ownerID && keep(stored.order) {
			list = append(list, stored.order.Clone())
		}
	}
	return list
}

func (r *Repository) byRequestKeyLocked(ownerID int64, key string) *storedOrder {
	for _, stored := range r.orders {
		if stored.order.OwnerID == ownerID && stored.requestKey == key {
			return stored
		}
	}
	return nil
}

func (r *Repository) uniqueNumberLocked(next domain.NumberGenerator) (string, error) {
	if next == nil {
		return "", errors.New("order number generator not configured")
	}
	for attempt := 0; attempt < domain.MaxNumberAttempts; attempt++ {
		number := next()
		taken := false
		for _, stored := range r.orders {
			if stored.order.Number == number {
				taken = true
				break
			}
		}
		if !taken {
			return number, nil
		}
	}
	return "", &apperrors.ConflictError{Entity: "order", Field: "number", Reason: "could not allocate a unique order number"}
}

func newer(a, b *domain.Order) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
