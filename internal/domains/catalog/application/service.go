package application

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCategory(ctx context.Context, ownerID int64, input ports.CreateCategoryInput) (*domain.Category, error) {
	category, err := domain.NewCategory(ownerID, input.Name, input.Description)
	if err != nil {
		return nil, mapError("create category", err)
	}
	created, err := s.repo.CreateCategory(ctx, category)
	return created, mapError("create category", err)
}

func (s *Service) GetCategory(ctx context.Context, ownerID, id int64) (*domain.Category, error) {
	category, err := s.repo.GetCategory(ctx, ownerID, id)
	return category, mapError("get category", err)
}

func (s *Service) ListCategories(ctx context.Context, ownerID int64) ([]*domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx, ownerID)
	return categories, mapError("list categories", err)
}

func (s *Service) UpdateCategory(ctx context.Context, ownerID, id int64, input ports.UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, mapError("update category", err)
	}
	if input.Name != nil {
		if err := category.Rename(*input.Name); err != nil {
			return nil, mapError("update category", err)
		}
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	updated, err := s.repo.UpdateCategory(ctx, category)
	return updated, mapError("update category", err)
}

// DeleteCategory refuses to delete a category that still holds products.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	if _, err := s.repo.GetCategory(ctx, ownerID, id); err != nil {
		return mapError("delete category", err)
	}
	count, err := s.repo.CountProductsInCategory(ctx, ownerID, id)
	if err != nil {
		return mapError("delete category", err)
	}
	if count > 0 {
		return &apperrors.ConflictError{Entity: "category", Field: "products", Reason: "category still has products"}
	}
	return mapError("delete category", s.repo.DeleteCategory(ctx, ownerID, id))
}

func (s *Service) CreateProduct(ctx context.Context, ownerID int64, input ports.CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(ownerID, input.Name, input.PurchasePrice, input.SalePrice, input.Quantity)
	if err != nil {
		return nil, mapError("create product", err)
	}
	if err := (domain.SKUEdit{SKU: input.SKU}).Apply(product); err != nil {
		return nil, mapError("create product", err)
	}
	product.Description = strings.TrimSpace(input.Description)
	if input.CategoryID != nil {
		edit := domain.CategoryEdit{CategoryID: input.CategoryID}
		if err := s.applyCategory(ctx, product, edit); err != nil {
			return nil, err
		}
	}
	created, err := s.repo.CreateProduct(ctx, product)
	return created, mapError("create product", err)
}

func (s *Service) GetProduct(ctx context.Context, ownerID, id int64) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, ownerID, id)
	return product, mapError("get product", err)
}

func (s *Service) ListProducts(ctx context.Context, ownerID int64, categoryID *int64) ([]*domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, ownerID, ports.ProductFilter{CategoryID: categoryID})
	return products, mapError("list products", err)
}

// UpdateProduct applies every edit or none of them.
func (s *Service) UpdateProduct(ctx context.Context, ownerID, id int64, edits ...domain.Edit) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, ownerID, id)
	if err != nil {
		return nil, mapError("update product", err)
	}
	for _, edit := range edits {
		if edit == nil {
			continue
		}
		if categoryEdit, ok := edit.(domain.CategoryEdit); ok {
			if err := s.applyCategory(ctx, product, categoryEdit); err != nil {
				return nil, err
			}
			continue
		}
		if err := edit.Apply(product); err != nil {
			return nil, mapEditError(edit, err)
		}
	}
	if err := product.Validate(); err != nil {
		return nil, mapError("update product", err)
	}
	updated, err := s.repo.UpdateProduct(ctx, product)
	return updated, mapError("update product", err)
}

func (s *Service) AdjustQuantity(ctx context.Context, ownerID, id, delta int64) (int64, error) {
	if delta == math.MinInt64 {
		return 0, apperrors.NewValidation("delta", domain.ErrQuantityOverflow)
	}
	qty, err := s.repo.AdjustQuantity(ctx, ownerID, id, delta)
	return qty, mapError("adjust quantity", err)
}

func (s *Service) DeleteProduct(ctx context.Context, ownerID, id int64) error {
	return mapError("delete product", s.repo.DeleteProduct(ctx, ownerID, id))
}

func (s *Service) applyCategory(ctx context.Context, product *domain.Product, edit domain.CategoryEdit) error {
	if err := edit.Apply(product); err != nil {
		return mapEditError(edit, err)
	}
	if product.CategoryID == nil {
		return nil
	}
	if _, err := s.repo.GetCategory(ctx, product.OwnerID, *product.CategoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("category", *product.CategoryID)
		}
		return mapError("load category", err)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
