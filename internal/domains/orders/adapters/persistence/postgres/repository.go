package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogpg "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/persistence/postgres"
	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Repository = (*Repository)(nil)

var errNumberTaken = errors.New("order number taken")

// Repository persists orders with GORM. Commit runs in a single database
// transaction together with the stock decrements on the catalog's products table.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
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

// NewRepository wires a GORM-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB, opts ...Option) *Repository {
	r := &Repository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OrderRecord maps an order to the orders table.
type OrderRecord struct {
	ID          int64             `gorm:"primaryKey;column:id"`
	OwnerID     int64             `gorm:"column:owner_id;not null;index;uniqueIndex:idx_orders_owner_request,priority:1"`
	Number      string            `gorm:"column:order_number;size:16;not null;uniqueIndex"`
	RequestKey  *string           `gorm:"column:request_key;size:255;uniqueIndex:idx_orders_owner_request,priority:2"`
	RequestHash string            `gorm:"column:request_hash;size:64"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:decimal(12,2);not null"`
	TotalProfit decimal.Decimal   `gorm:"column:total_profit;type:decimal(12,2);not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;index"`
	Items       []OrderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItemRecord maps an order line. Product details are a snapshot, so the
// product id carries no foreign key and survives product deletion.
type OrderItemRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	OrderID     int64           `gorm:"column:order_id;not null;index"`
	ProductID   int64           `gorm:"column:product_id;not null;index"`
	ProductName string          `gorm:"column:product_name;size:255;not null"`
	Quantity    int64           `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	UnitCost    decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,2);not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null"`
	Profit      decimal.Decimal `gorm:"column:profit;type:decimal(12,2);not null"`
}

func (OrderItemRecord) TableName() string { return "order_items" }

// Models lists the records this adapter needs migrated.
func Models() []any { return []any{&OrderRecord{}, &OrderItemRecord{}, &BasketRecord{}} }

func (r *Repository) Commit(ctx context.Context, req ports.CommitRequest) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if req.NextNumber == nil {
		return nil, errors.New("order number generator not configured")
	}
	lines, err := domain.NormalizeLines(req.Lines)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < domain.MaxNumberAttempts; attempt++ {
		order, err := r.commitOnce(ctx, req, lines, req.NextNumber())
		if !errors.Is(err, errNumberTaken) {
			return order, err
		}
		if req.RequestKey != "" {
			if _, _, lookupErr := r.GetByRequestKey(ctx, req.OwnerID, req.RequestKey); lookupErr == nil {
				return nil, apperrors.Duplicate("order", "idempotencyKey", req.RequestKey)
			}
		}
	}
	return nil, &apperrors.ConflictError{Entity: "order", Field: "number", Reason: "could not allocate a unique order number"}
}

func (r *Repository) commitOnce(ctx context.Context, req ports.CommitRequest, lines []domain.Line, number string) (*domain.Order, error) {
	var committed *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := r.lockStock(tx, req.OwnerID, lines)
		if err != nil {
			return err
		}
		order, err := domain.Draft(req.OwnerID, lines, stock)
		if err != nil {
			return err
		}
		order.Number = number
		order.CreatedAt = r.now().UTC()

		record := toRecord(order, req.RequestKey, req.RequestHash)
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errNumberTaken
			}
			return apperrors.Persistence("insert order", err)
		}
		for _, item := range order.Items {
			ok, err := catalogpg.ApplyStockDelta(tx, req.OwnerID, item.ProductID, -item.Quantity)
			if err != nil {
				return apperrors.Persistence("decrement stock", err)
			}
			if !ok {
				level := stock[item.ProductID]
				return apperrors.NewInsufficientStock(apperrors.Shortage{
					ProductID: item.ProductID, Name: level.Name, Requested: item.Quantity, Available: level.Available,
				})
			}
		}
		committed = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// lockStock reads the requested products. On PostgreSQL the rows stay locked
// until the transaction ends; the conditional decrement guards other dialects.
func (r *Repository) lockStock(tx *gorm.DB, ownerID int64, lines []domain.Line) (map[int64]domain.StockLevel, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	query := tx.Where("owner_id = ? AND id IN ?", ownerID, ids).Order("id ASC")
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var products []catalogpg.ProductRecord
	if err := query.Find(&products).Error; err != nil {
		return nil, apperrors.Persistence("load stock", err)
	}
	stock := make(map[int64]domain.StockLevel, len(products))
	for _, p := range products {
		stock[p.ID] = domain.StockLevel{
			ProductID:     p.ID,
			Name:          p.Name,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			Available:     p.Quantity,
		}
	}
	return stock, nil
}

func (r *Repository) GetByNumber(ctx context.Context, ownerID int64, number string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record OrderRecord
	err := r.withItems(ctx).Where("owner_id = ? AND order_number = ?", ownerID, number).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order", number)
		}
		return nil, apperrors.Persistence("load order", err)
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByRequestKey(ctx context.Context, ownerID int64, key string) (*domain.Order, string, error) {
	if err := r.ensureDB(); err != nil {
		return nil, "", err
	}
	var record OrderRecord
	err := r.withItems(ctx).Where("owner_id = ? AND request_key = ?", ownerID, key).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.NotFound("order", key)
		}
		return nil, "", apperrors.Persistence("load order", err)
	}
	return record.toDomain(), record.RequestHash, nil
}

func (r *Repository) ListRecent(ctx context.Context, ownerID int64, limit int) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.withItems(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []OrderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.Persistence("list orders", err)
	}
	return toDomainList(records), nil
}

func (r *Repository) ListInRange(ctx context.Context, ownerID int64, rng ports.Range) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.withItems(ctx).Where("owner_id = ? AND created_at <= ?", ownerID, rng.To.UTC())
	if rng.From != nil {
		query = query.Where("created_at >= ?", rng.From.UTC())
	}
	var records []OrderRecord
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, apperrors.Persistence("list orders", err)
	}
	return toDomainList(records), nil
}

func (r *Repository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderRecord{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, apperrors.Persistence("count orders", err)
	}
	return count, nil
}

func (r *Repository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&OrderRecord{}).Select("id").Where("owner_id = ?", ownerID)
		if err := tx.Where("order_id IN (?)", owned).Delete(&OrderItemRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&OrderRecord{}).Error
	})
	if err != nil {
		return apperrors.Persistence("delete orders", err)
	}
	return nil
}

func (r *Repository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order, requestKey, requestHash string) OrderRecord {
	record := OrderRecord{
		OwnerID:     order.OwnerID,
		Number:      order.Number,
		RequestHash: requestHash,
		TotalAmount: order.TotalAmount,
		TotalProfit: order.TotalProfit,
		CreatedAt:   order.CreatedAt,
		Items:       make([]OrderItemRecord, 0, len(order.Items)),
	}
	if requestKey != "" {
		record.RequestKey = &requestKey
	}
	for _, item := range order.Items {
		record.Items = append(record.Items, OrderItemRecord{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			UnitCost:    item.UnitCost,
			Amount:      item.Amount,
			Profit:      item.Profit,
		})
	}
	return record
}

func (r OrderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Number:      r.Number,
		TotalAmount: r.TotalAmount,
		TotalProfit: r.TotalProfit,
		CreatedAt:   r.CreatedAt.UTC(),
		Items:       make([]domain.Item, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			UnitCost:    item.UnitCost,
			Amount:      item.Amount,
			Profit:      item.Profit,
		})
	}
	return order
}

func toDomainList(records []OrderRecord) []*domain.Order {
	list := make([]*domain.Order, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list
}
