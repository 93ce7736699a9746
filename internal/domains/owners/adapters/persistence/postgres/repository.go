package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists owners in a relational database using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a GORM-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OwnerRecord maps the owner aggregate to the owners table.
type OwnerRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	ChatID    int64     `gorm:"column:chat_id;uniqueIndex;not null"`
	Email     string    `gorm:"column:email;size:255;uniqueIndex;not null"`
	StoreName string    `gorm:"column:store_name;size:255;not null"`
	Language  string    `gorm:"column:language;size:8;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (OwnerRecord) TableName() string { return "owners" }

// Models lists the records this adapter needs migrated.
func Models() []any { return []any{&OwnerRecord{}} }

func (r *Repository) Create(ctx context.Context, owner *domain.Owner) (*domain.Owner, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, errors.New("owner is nil")
	}
	record := toRecord(owner)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Duplicate("owner", "email or chatId", owner.Email)
		}
		return nil, apperrors.Persistence("create owner", err)
	}
	return record.toDomain(), nil
}

func (r *Repository) Update(ctx context.Context, owner *domain.Owner) (*domain.Owner, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, errors.New("owner is nil")
	}
	result := r.db.WithContext(ctx).Model(&OwnerRecord{}).Where("id = ?", owner.ID).Updates(map[string]any{
		"store_name": owner.StoreName,
		"language":   string(owner.Language),
		"active":     owner.Active,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return nil, apperrors.Persistence("update owner", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("owner", owner.ID)
	}
	return r.GetByID(ctx, owner.ID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Owner, error) {
	return r.first(ctx, id, "id = ?", id)
}

func (r *Repository) GetByChatID(ctx context.Context, chatID int64) (*domain.Owner, error) {
	return r.first(ctx, chatID, "chat_id = ?", chatID)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	return r.first(ctx, email, "email = ?", email)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&OwnerRecord{}, id)
	if result.Error != nil {
		return apperrors.Persistence("delete owner", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("owner", id)
	}
	return nil
}

func (r *Repository) first(ctx context.Context, key any, query string, args ...any) (*domain.Owner, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record OwnerRecord
	if err := r.db.WithContext(ctx).Where(query, args...).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("owner", key)
		}
		return nil, apperrors.Persistence("load owner", err)
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("owner repository not configured")
	}
	return nil
}

func toRecord(owner *domain.Owner) OwnerRecord {
	return OwnerRecord{
		ID:        owner.ID,
		ChatID:    owner.ChatID,
		Email:     owner.Email,
		StoreName: owner.StoreName,
		Language:  string(owner.Language),
		Active:    owner.Active,
		CreatedAt: owner.CreatedAt,
	}
}

func (r OwnerRecord) toDomain() *domain.Owner {
	return &domain.Owner{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Email:     r.Email,
		StoreName: r.StoreName,
		Language:  domain.Language(r.Language),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}
