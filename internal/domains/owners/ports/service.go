package ports

import (
	"context"

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	ChatID    int64
	Email     string
	StoreName string
	Language  domain.Language
}

// SettingsInput carries a partial settings update; nil fields are left untouched.
type SettingsInput struct {
	StoreName *string
	Language  *domain.Language
}

// StoreInfo summarises an owner's store.
type StoreInfo struct {
	Owner        *domain.Owner
	ProductCount int64
	OrderCount   int64
}

// Service exposes owner use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Owner, error)
	Get(ctx context.Context, id int64) (*domain.Owner, error)
	GetByChatID(ctx context.Context, chatID int64) (*domain.Owner, error)
	UpdateSettings(ctx context.Context, id int64, input SettingsInput) (*domain.Owner, error)
	Deactivate(ctx context.Context, id int64) (*domain.Owner, error)
	StoreInfo(ctx context.Context, id int64) (*StoreInfo, error)
	Delete(ctx context.Context, id int64) error
}
