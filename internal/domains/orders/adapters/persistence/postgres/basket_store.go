package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.BasketStore = (*BasketStore)(nil)

// BasketStore persists baskets so a conversation survives process restarts.
type BasketStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBasketStore(db *gorm.DB) *BasketStore {
	return &BasketStore{db: db, now: time.Now}
}

// WithClock overrides the clock used to hide expired baskets.
func (s *BasketStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// BasketRecord maps a basket to the baskets table.
type BasketRecord struct {
	OwnerID        int64               `gorm:"primaryKey;column:owner_id;autoIncrement:false"`
	ConversationID string              `gorm:"primaryKey;column:conversation_id;size:128"`
	State          string              `gorm:"column:state;size:32;not null"`
	Offer          []domain.OfferEntry `gorm:"column:offer;type:text;serializer:json"`
	Selected       idList              `gorm:"column:selected"`
	Quantities     idList              `gorm:"column:quantities"`
	CreatedAt      time.Time           `gorm:"column:created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at"`
	ExpiresAt      time.Time           `gorm:"column:expires_at;index"`
}

func (BasketRecord) TableName() string { return "baskets" }

// idList is a postgres bigint[] column. Other dialects keep the same array
// literal in a text column.
type idList pq.Int64Array

func (idList) GormDataType() string { return "idlist" }

func (idList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bigint[]"
	}
	return "text"
}

func (l idList) Value() (driver.Value, error) { return pq.Int64Array(l).Value() }

func (l *idList) Scan(src any) error { return (*pq.Int64Array)(l).Scan(src) }

func (s *BasketStore) Save(ctx context.Context, basket *domain.Basket) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if basket == nil {
		return errors.New("basket is nil")
	}
	record := BasketRecord{
		OwnerID:        basket.Key.OwnerID,
		ConversationID: basket.Key.ConversationID,
		State:          string(basket.State),
		Offer:          basket.Offer,
		Selected:       idList(basket.Selected),
		Quantities:     idList(basket.Quantities),
		CreatedAt:      basket.CreatedAt,
		UpdatedAt:      basket.UpdatedAt,
		ExpiresAt:      basket.ExpiresAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error
	if err != nil {
		return apperrors.Persistence("save basket", err)
	}
	return nil
}

func (s *BasketStore) Get(ctx context.Context, key domain.Key) (*domain.Basket, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record BasketRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND conversation_id = ? AND expires_at > ?", key.OwnerID, key.ConversationID, s.now().UTC()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("basket", key.String())
		}
		return nil, apperrors.Persistence("load basket", err)
	}
	return &domain.Basket{
		Key:        key,
		State:      domain.State(record.State),
		Offer:      record.Offer,
		Selected:   emptyAsNil(record.Selected),
		Quantities: emptyAsNil(record.Quantities),
		CreatedAt:  record.CreatedAt.UTC(),
		UpdatedAt:  record.UpdatedAt.UTC(),
		ExpiresAt:  record.ExpiresAt.UTC(),
	}, nil
}

func (s *BasketStore) Delete(ctx context.Context, key domain.Key) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND conversation_id = ?", key.OwnerID, key.ConversationID).
		Delete(&BasketRecord{}).Error
	if err != nil {
		return apperrors.Persistence("delete basket", err)
	}
	return nil
}

func (s *BasketStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&BasketRecord{})
	if result.Error != nil {
		return 0, apperrors.Persistence("purge baskets", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *BasketStore) DeleteByOwner(ctx context.Context, ownerID int64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&BasketRecord{}).Error; err != nil {
		return apperrors.Persistence("delete baskets", err)
	}
	return nil
}

func (s *BasketStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("basket store not configured")
	}
	return nil
}

func emptyAsNil(values idList) []int64 {
	if len(values) == 0 {
		return nil
	}
	return []int64(values)
}
