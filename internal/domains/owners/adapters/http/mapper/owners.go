package mapper

import (
	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/shared/projection"
)

// RegisterRequest is the body of POST /owners.
type RegisterRequest struct {
	ChatID    int64  `json:"chatId"`
	Email     string `json:"email"`
	StoreName string `json:"storeName"`
	Language  string `json:"language,omitempty"`
}

// SettingsRequest is the body of PATCH /owners/:ownerId.
type SettingsRequest struct {
	StoreName *string `json:"storeName,omitempty"`
	Language  *string `json:"language,omitempty"`
}

// Owner is the HTTP representation of an owner.
type Owner struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chatId"`
	Email     string `json:"email"`
	StoreName string `json:"storeName"`
	Language  string `json:"language"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

// StoreInfo is the HTTP representation of the store screen.
type StoreInfo struct {
	Owner        Owner `json:"owner"`
	ProductCount int64 `json:"productCount"`
	OrderCount   int64 `json:"orderCount"`
}

func ToRegisterInput(req RegisterRequest) ports.RegisterInput {
	return ports.RegisterInput{
		ChatID:    req.ChatID,
		Email:     req.Email,
		StoreName: req.StoreName,
		Language:  domain.Language(req.Language),
	}
}

func ToSettingsInput(req SettingsRequest) ports.SettingsInput {
	in := ports.SettingsInput{StoreName: req.StoreName}
	if req.Language != nil {
		lang := domain.Language(*req.Language)
		in.Language = &lang
	}
	return in
}

func FromOwner(o *domain.Owner) Owner {
	return Owner{
		ID:        o.ID,
		ChatID:    o.ChatID,
		Email:     o.Email,
		StoreName: o.StoreName,
		Language:  string(o.Language),
		Active:    o.Active,
		CreatedAt: projection.Timestamp(o.CreatedAt),
	}
}

func FromStoreInfo(info *ports.StoreInfo) StoreInfo {
	return StoreInfo{
		Owner:        FromOwner(info.Owner),
		ProductCount: info.ProductCount,
		OrderCount:   info.OrderCount,
	}
}
