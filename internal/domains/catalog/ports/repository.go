package ports

import (
	"context"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
)

// ProductFilter narrows ListProducts. Zero value lists every product of the owner.
type ProductFilter struct {
	CategoryID  *int64
	InStockOnly bool
	// IDs, when non-empty, keeps only these products.
	IDs []int64
}

// Repository persists categories and products. Every lookup is scoped by owner and
// reports apperrors.ErrNotFound when the entity is absent or belongs to someone else.
// Lists are ordered by id, which is insertion order.
type Repository interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, ownerID, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]*domain.Category, error)
	CountProductsInCategory(ctx context.Context, ownerID, categoryID int64) (int64, error)
	DeleteCategory(ctx context.Context, ownerID, id int64) error

	// CreateProduct and UpdateProduct report apperrors.ErrConflict on a duplicate SKU.
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, ownerID, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, ownerID int64, filter ProductFilter) ([]*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID, id int64) error

	// AdjustQuantity atomically adds delta to the stock and refuses to go below zero
	// with an apperrors.InsufficientStockError.
	AdjustQuantity(ctx context.Context, ownerID, id, delta int64) (int64, error)

	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID int64) error
}
