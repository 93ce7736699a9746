package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter. It also offers WithStock so the
// in-memory order adapter can commit against the same stock atomically.
type Repository struct {
	mu             sync.RWMutex
	categories     map[int64]*domain.Category
	products       map[int64]*domain.Product
	nextCategoryID int64
	nextProductID  int64
	now            func() time.Time
}

// Option configures the repository.
type Option func(*Repository)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		categories: map[int64]*domain.Category{},
		products:   map[int64]*domain.Product{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *category
	r.nextCategoryID++
	clone.ID = r.nextCategoryID
	clone.CreatedAt = r.now().UTC()
	r.categories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) UpdateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.categories[category.ID]
	if !ok || existing.OwnerID != category.OwnerID {
		return nil, apperrors.NotFound("category", category.ID)
	}
	clone := *category
	clone.CreatedAt = existing.CreatedAt
	r.categories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetCategory(_ context.Context, ownerID, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok || category.OwnerID != ownerID {
		return nil, apperrors.NotFound("category", id)
	}
	clone := *category
	return &clone, nil
}

func (r *Repository) ListCategories(_ context.Context, ownerID int64) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Category, 0)
	for _, category := range r.categories {
		if category.OwnerID == ownerID {
			clone := *category
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) CountProductsInCategory(_ context.Context, ownerID, categoryID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, product := range r.products {
		if product.OwnerID == ownerID && product.CategoryID != nil && *product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *Repository) DeleteCategory(_ context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok || category.OwnerID != ownerID {
		return apperrors.NotFound("category", id)
	}
	delete(r.categories, id)
	return nil
}

func (r *Repository) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkSKU(product.SKU, 0); err != nil {
		return nil, err
	}
	clone := product.Clone()
	r.nextProductID++
	clone.ID = r.nextProductID
	now := r.now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) UpdateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[product.ID]
	if !ok || existing.OwnerID != product.OwnerID {
		return nil, apperrors.NotFound("product", product.ID)
	}
	if err := r.checkSKU(product.SKU, product.ID); err != nil {
		return nil, err
	}
	clone := product.Clone()
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = r.now().UTC()
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetProduct(_ context.Context, ownerID, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok || product.OwnerID != ownerID {
		return nil, apperrors.NotFound("product", id)
	}
	return product.Clone(), nil
}

func (r *Repository) ListProducts(_ context.Context, ownerID int64, filter ports.ProductFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(ownerID, filter), nil
}

func (r *Repository) DeleteProduct(_ context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok || product.OwnerID != ownerID {
		return apperrors.NotFound("product", id)
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) AdjustQuantity(_ context.Context, ownerID, id, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok || product.OwnerID != ownerID {
		return 0, apperrors.NotFound("product", id)
	}
	next, err := domain.AddQuantity(product.Quantity, delta)
	if err != nil {
		return product.Quantity, apperrors.NewValidation("delta", err)
	}
	if next < 0 {
		return product.Quantity, apperrors.NewInsufficientStock(apperrors.Shortage{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: -delta,
			Available: product.Quantity,
		})
	}
	product.Quantity = next
	product.UpdatedAt = r.now().UTC()
	return next, nil
}

func (r *Repository) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, product := range r.products {
		if product.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *Repository) DeleteByOwner(_ context.Context, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, product := range r.products {
		if product.OwnerID == ownerID {
			delete(r.products, id)
		}
	}
	for id, category := range r.categories {
		if category.OwnerID == ownerID {
			delete(r.categories, id)
		}
	}
	return nil
}

// StockTx is the view of an owner's products handed to WithStock callbacks.
type StockTx struct {
	products map[int64]*domain.Product
	touched  map[int64]bool
}

// Product returns a copy of the product, or nil when the owner has no such product.
func (tx *StockTx) Product(id int64) *domain.Product {
	return tx.products[id].Clone()
}

// Decrement lowers the stock of a product already known to hold at least qty units.
func (tx *StockTx) Decrement(id, qty int64) error {
	product, ok := tx.products[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}
	if product.Quantity < qty {
		return apperrors.NewInsufficientStock(apperrors.Shortage{
			ProductID: id, Name: product.Name, Requested: qty, Available: product.Quantity,
		})
	}
	product.Quantity -= qty
	tx.touched[id] = true
	return nil
}

// WithStock runs fn while holding the catalog write lock. Stock changes made
// through the StockTx are applied only when fn returns nil.
func (r *Repository) WithStock(ownerID int64, fn func(tx *StockTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &StockTx{products: map[int64]*domain.Product{}, touched: map[int64]bool{}}
	for id, product := range r.products {
		if product.OwnerID == ownerID {
			tx.products[id] = product.Clone()
		}
	}
	if err := fn(tx); err != nil {
		return err
	}
	now := r.now().UTC()
	for id := range tx.touched {
		r.products[id].Quantity = tx.products[id].Quantity
		r.products[id].UpdatedAt = now
	}
	return nil
}

func (r *Repository) listLocked(ownerID int64, filter ports.ProductFilter) []*domain.Product {
	var ids map[int64]bool
	if len(filter.IDs) > 0 {
		ids = make(map[int64]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}
	list := make([]*domain.Product, 0)
	for _, product := range r.products {
		if product.OwnerID != ownerID {
			continue
		}
		if ids != nil && !ids[product.ID] {
			continue
		}
		if filter.CategoryID != nil && (product.CategoryID == nil || *product.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.InStockOnly && !product.InStock() {
			continue
		}
		list = append(list, product.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *Repository) checkSKU(sku string, selfID int64) error {
	if sku == "" {
		return nil
	}
	for _, product := range r.products {
		if product.SKU == sku && product.ID != selfID {
			return apperrors.Duplicate("product", "sku", sku)
		}
	}
	return nil
}
