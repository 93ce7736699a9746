package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.BasketStore = (*BasketStore)(nil)

// BasketStore keeps baskets in a map keyed by owner and conversation.
type BasketStore struct {
	mu      sync.RWMutex
	baskets map[domain.Key]*domain.Basket
	now     func() time.Time
}

func NewBasketStore() *BasketStore {
	return &BasketStore{baskets: map[domain.Key]*domain.Basket{}, now: time.Now}
}

// WithClock overrides the clock used to hide expired baskets.
func (s *BasketStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *BasketStore) Save(_ context.Context, basket *domain.Basket) error {
	if basket == nil {
		return errors.New("basket is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baskets[basket.Key] = basket.Clone()
	return nil
}

func (s *BasketStore) Get(_ context.Context, key domain.Key) (*domain.Basket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	basket, ok := s.baskets[key]
	if !ok || basket.Expired(s.now()) {
		return nil, apperrors.NotFound("basket", key.String())
	}
	return basket.Clone(), nil
}

func (s *BasketStore) Delete(_ context.Context, key domain.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.baskets, key)
	return nil
}

func (s *BasketStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for key, basket := range s.baskets {
		if basket.Expired(now) {
			delete(s.baskets, key)
			purged++
		}
	}
	return purged, nil
}

func (s *BasketStore) DeleteByOwner(_ context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.baskets {
		if key.OwnerID == ownerID {
			delete(s.baskets, key)
		}
	}
	return nil
}
