package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
)

// CreateCategoryInput carries a new category.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput carries a partial category update.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
}

// CreateProductInput carries a new product.
type CreateProductInput struct {
	Name          string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Quantity      int64
	CategoryID    *int64
	SKU           string
	Description   string
}

// Service exposes catalog use cases to adapters.
type Service interface {
	CreateCategory(ctx context.Context, ownerID int64, input CreateCategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, ownerID, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, ownerID, id int64, input UpdateCategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id int64) error

	CreateProduct(ctx context.Context, ownerID int64, input CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, ownerID, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, ownerID int64, categoryID *int64) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID, id int64, edits ...domain.Edit) (*domain.Product, error)
	AdjustQuantity(ctx context.Context, ownerID, id, delta int64) (int64, error)
	DeleteProduct(ctx context.Context, ownerID, id int64) error
}
