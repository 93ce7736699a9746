package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory owner persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	owners map[int64]*domain.Owner
	nextID int64
	now    func() time.Time
}

// Option configures the repository.
type Option func(*Repository)

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{owners: map[int64]*domain.Owner{}, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Create(_ context.Context, owner *domain.Owner) (*domain.Owner, error) {
	if owner == nil {
		return nil, errors.New("owner is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.owners {
		if existing.Email == owner.Email {
			return nil, apperrors.Duplicate("owner", "email", owner.Email)
		}
		if existing.ChatID == owner.ChatID {
			return nil, apperrors.Duplicate("owner", "chatId", owner.ChatID)
		}
	}
	clone := *owner
	r.nextID++
	clone.ID = r.nextID
	clone.CreatedAt = r.now().UTC()
	r.owners[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Update(_ context.Context, owner *domain.Owner) (*domain.Owner, error) {
	if owner == nil {
		return nil, errors.New("owner is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.owners[owner.ID]
	if !ok {
		return nil, apperrors.NotFound("owner", owner.ID)
	}
	clone := *owner
	clone.CreatedAt = existing.CreatedAt
	r.owners[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[id]
	if !ok {
		return nil, apperrors.NotFound("owner", id)
	}
	clone := *owner
	return &clone, nil
}

func (r *Repository) GetByChatID(_ context.Context, chatID int64) (*domain.Owner, error) {
	return r.find(func(o *domain.Owner) bool { return o.ChatID == chatID }, chatID)
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.Owner, error) {
	return r.find(func(o *domain.Owner) bool { return o.Email == email }, email)
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; !ok {
		return apperrors.NotFound("owner", id)
	}
	delete(r.owners, id)
	return nil
}

func (r *Repository) find(match func(*domain.Owner) bool, key any) (*domain.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, owner := range r.owners {
		if match(owner) {
			clone := *owner
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("owner", key)
}
