package postgres

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists the catalog in a relational database using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a GORM-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CategoryRecord maps a category to the categories table.
type CategoryRecord struct {
	ID          int64     `gorm:"primaryKey;column:id"`
	OwnerID     int64     `gorm:"column:owner_id;index;not null"`
	Name        string    `gorm:"column:name;size:255;not null"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (CategoryRecord) TableName() string { return "categories" }

// ProductRecord maps a product to the products table. ProfitPerUnit is stored
// redundantly and recomputed on every write.
type ProductRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	OwnerID       int64           `gorm:"column:owner_id;index;not null"`
	CategoryID    *int64          `gorm:"column:category_id;index"`
	Name          string          `gorm:"column:name;size:255;not null"`
	SKU           *string         `gorm:"column:sku;size:64;uniqueIndex"`
	Description   string          `gorm:"column:description;type:text"`
	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;type:decimal(12,2);not null"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:decimal(12,2);not null"`
	ProfitPerUnit decimal.Decimal `gorm:"column:profit_per_unit;type:decimal(12,2);not null"`
	Quantity      int64           `gorm:"column:quantity;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (ProductRecord) TableName() string { return "products" }

// Models lists the records this adapter needs migrated.
func Models() []any { return []any{&CategoryRecord{}, &ProductRecord{}} }

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.New("category is nil")
	}
	record := CategoryRecord{OwnerID: category.OwnerID, Name: category.Name, Description: category.Description}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, apperrors.Persistence("create category", err)
	}
	return record.toDomain(), nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.New("category is nil")
	}
	result := r.db.WithContext(ctx).Model(&CategoryRecord{}).
		Where("id = ? AND owner_id = ?", category.ID, category.OwnerID).
		Updates(map[string]any{"name": category.Name, "description": category.Description})
	if result.Error != nil {
		return nil, apperrors.Persistence("update category", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("category", category.ID)
	}
	return r.GetCategory(ctx, category.OwnerID, category.ID)
}

func (r *Repository) GetCategory(ctx context.Context, ownerID, id int64) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record CategoryRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, apperrors.Persistence("load category", err)
	}
	return record.toDomain(), nil
}

func (r *Repository) ListCategories(ctx context.Context, ownerID int64) ([]*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []CategoryRecord
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, apperrors.Persistence("list categories", err)
	}
	list := make([]*domain.Category, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) CountProductsInCategory(ctx context.Context, ownerID, categoryID int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&ProductRecord{}).
		Where("owner_id = ? AND category_id = ?", ownerID, categoryID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Persistence("count category products", err)
	}
	return count, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&CategoryRecord{})
	if result.Error != nil {
		return apperrors.Persistence("delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("category", id)
	}
	return nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := ToRecord(product)
	record.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSKU(tx, record.SKU, 0); err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, translate("create product", product.SKU, err)
	}
	return record.ToDomain(), nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := ToRecord(product)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSKU(tx, record.SKU, record.ID); err != nil {
			return err
		}
		result := tx.Model(&ProductRecord{}).
			Where("id = ? AND owner_id = ?", record.ID, record.OwnerID).
			Updates(map[string]any{
				"category_id":     record.CategoryID,
				"name":            record.Name,
				"sku":             record.SKU,
				"description":     record.Description,
				"purchase_price":  record.PurchasePrice,
				"sale_price":      record.SalePrice,
				"profit_per_unit": record.ProfitPerUnit,
				"quantity":        record.Quantity,
				"updated_at":      time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("product", record.ID)
		}
		return nil
	})
	if err != nil {
		return nil, translate("update product", product.SKU, err)
	}
	return r.GetProduct(ctx, product.OwnerID, product.ID)
}

func (r *Repository) GetProduct(ctx context.Context, ownerID, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, apperrors.Persistence("load product", err)
	}
	return record.ToDomain(), nil
}

func (r *Repository) ListProducts(ctx context.Context, ownerID int64, filter ports.ProductFilter) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.InStockOnly {
		query = query.Where("quantity > 0")
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	var records []ProductRecord
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, apperrors.Persistence("list products", err)
	}
	list := make([]*domain.Product, 0, len(records))
	for i := range records {
		list = append(list, records[i].ToDomain())
	}
	return list, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, ownerID, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&ProductRecord{})
	if result.Error != nil {
		return apperrors.Persistence("delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// AdjustQuantity applies delta with a single conditional UPDATE so the floor
// check and the write cannot interleave with another writer.
func (r *Repository) AdjustQuantity(ctx context.Context, ownerID, id, delta int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var quantity int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := ApplyStockDelta(tx, ownerID, id, delta)
		if err != nil {
			return err
		}
		var record ProductRecord
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product", id)
			}
			return err
		}
		if !ok {
			if delta > 0 {
				return apperrors.NewValidation("delta", domain.ErrQuantityOverflow)
			}
			return apperrors.NewInsufficientStock(apperrors.Shortage{
				ProductID: id, Name: record.Name, Requested: -delta, Available: record.Quantity,
			})
		}
		quantity = record.Quantity
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap("adjust quantity", err)
	}
	return quantity, nil
}

func (r *Repository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&ProductRecord{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, apperrors.Persistence("count products", err)
	}
	return count, nil
}

func (r *Repository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&ProductRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&CategoryRecord{}).Error
	})
	if err != nil {
		return apperrors.Persistence("delete catalog", err)
	}
	return nil
}

// ApplyStockDelta adds delta to a product's quantity inside tx unless the result
// would be negative or overflow bigint. It reports false when no row was updated.
// The bound is computed here so the database never evaluates an overflowing sum.
func ApplyStockDelta(tx *gorm.DB, ownerID, id, delta int64) (bool, error) {
	if delta == math.MinInt64 {
		return false, nil
	}
	query := tx.Model(&ProductRecord{}).Where("id = ? AND owner_id = ?", id, ownerID)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	} else {
		query = query.Where("quantity <= ?", int64(math.MaxInt64)-delta)
	}
	result := query.
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("catalog repository not configured")
	}
	return nil
}

func checkSKU(tx *gorm.DB, sku *string, selfID int64) error {
	if sku == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&ProductRecord{}).Where("sku = ? AND id <> ?", *sku, selfID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Duplicate("product", "sku", *sku)
	}
	return nil
}

func translate(op, sku string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Duplicate("product", "sku", sku)
	}
	return apperrors.Wrap(op, err)
}

// ToRecord maps a product to its record.
func ToRecord(product *domain.Product) ProductRecord {
	record := ProductRecord{
		ID:            product.ID,
		OwnerID:       product.OwnerID,
		CategoryID:    product.CategoryID,
		Name:          product.Name,
		Description:   product.Description,
		PurchasePrice: product.PurchasePrice,
		SalePrice:     product.SalePrice,
		ProfitPerUnit: product.ProfitPerUnit(),
		Quantity:      product.Quantity,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if sku := domain.NormalizeSKU(product.SKU); sku != "" {
		record.SKU = &sku
	}
	return record
}

// ToDomain maps a record back to the product aggregate.
func (r ProductRecord) ToDomain() *domain.Product {
	product := &domain.Product{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Name:          r.Name,
		Description:   r.Description,
		PurchasePrice: r.PurchasePrice,
		SalePrice:     r.SalePrice,
		Quantity:      r.Quantity,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.CategoryID != nil {
		id := *r.CategoryID
		product.CategoryID = &id
	}
	if r.SKU != nil {
		product.SKU = *r.SKU
	}
	return product
}

func (r CategoryRecord) toDomain() *domain.Category {
	return &domain.Category{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}
