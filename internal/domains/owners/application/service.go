package application

import (
	"context"
	"errors"

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// Service orchestrates owner use cases.
type Service struct {
	repo       ports.Repository
	dependents []ports.Dependent
	products   ports.Counter
	orders     ports.Counter
}

// Option configures optional collaborators.
type Option func(*Service)

// WithDependents registers owned data removed before the owner on Delete.
// Dependents are removed in the given order, so pass children before parents.
func WithDependents(dependents ...ports.Dependent) Option {
	return func(s *Service) {
		s.dependents = append(s.dependents, dependents...)
	}
}

// WithCounters wires the product and order counters used by StoreInfo.
func WithCounters(products, orders ports.Counter) Option {
	return func(s *Service) {
		s.products = products
		s.orders = orders
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.Owner, error) {
	owner, err := domain.NewOwner(input.ChatID, input.Email, input.StoreName, input.Language)
	if err != nil {
		return nil, mapError("register owner", err)
	}
	if _, err := s.repo.GetByEmail(ctx, owner.Email); err == nil {
		return nil, apperrors.Duplicate("owner", "email", owner.Email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, mapError("register owner", err)
	}
	if _, err := s.repo.GetByChatID(ctx, owner.ChatID); err == nil {
		return nil, apperrors.Duplicate("owner", "chatId", owner.ChatID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, mapError("register owner", err)
	}
	created, err := s.repo.Create(ctx, owner)
	return created, mapError("register owner", err)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Owner, error) {
	owner, err := s.repo.GetByID(ctx, id)
	return owner, mapError("get owner", err)
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (*domain.Owner, error) {
	owner, err := s.repo.GetByChatID(ctx, chatID)
	return owner, mapError("get owner", err)
}

func (s *Service) UpdateSettings(ctx context.Context, id int64, input ports.SettingsInput) (*domain.Owner, error) {
	owner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("update owner", err)
	}
	if input.StoreName != nil {
		if err := owner.Rename(*input.StoreName); err != nil {
			return nil, mapError("update owner", err)
		}
	}
	if input.Language != nil {
		if err := owner.SetLanguage(*input.Language); err != nil {
			return nil, mapError("update owner", err)
		}
	}
	updated, err := s.repo.Update(ctx, owner)
	return updated, mapError("update owner", err)
}

func (s *Service) Deactivate(ctx context.Context, id int64) (*domain.Owner, error) {
	owner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("deactivate owner", err)
	}
	owner.Active = false
	updated, err := s.repo.Update(ctx, owner)
	return updated, mapError("deactivate owner", err)
}

func (s *Service) StoreInfo(ctx context.Context, id int64) (*ports.StoreInfo, error) {
	owner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("store info", err)
	}
	info := &ports.StoreInfo{Owner: owner}
	if s.products != nil {
		if info.ProductCount, err = s.products.CountByOwner(ctx, id); err != nil {
			return nil, mapError("count products", err)
		}
	}
	if s.orders != nil {
		if info.OrderCount, err = s.orders.CountByOwner(ctx, id); err != nil {
			return nil, mapError("count orders", err)
		}
	}
	return info, nil
}

// Delete removes the owner after every registered dependent has dropped its data.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return mapError("delete owner", err)
	}
	for _, dep := range s.dependents {
		if err := dep.DeleteByOwner(ctx, id); err != nil {
			return mapError("delete owner data", err)
		}
	}
	return mapError("delete owner", s.repo.Delete(ctx, id))
}

var _ ports.Service = (*Service)(nil)
