package ports

import (
	"context"

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
)

// Repository persists owner accounts. Lookups report apperrors.ErrNotFound for
// unknown owners and Create reports apperrors.ErrConflict for a taken chat id or email.
type Repository interface {
	Create(ctx context.Context, owner *domain.Owner) (*domain.Owner, error)
	Update(ctx context.Context, owner *domain.Owner) (*domain.Owner, error)
	GetByID(ctx context.Context, id int64) (*domain.Owner, error)
	GetByChatID(ctx context.Context, chatID int64) (*domain.Owner, error)
	GetByEmail(ctx context.Context, email string) (*domain.Owner, error)
	Delete(ctx context.Context, id int64) error
}

// Dependent is data owned by an owner that must go when the owner goes.
type Dependent interface {
	DeleteByOwner(ctx context.Context, ownerID int64) error
}

// Counter counts records owned by an owner.
type Counter interface {
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}
