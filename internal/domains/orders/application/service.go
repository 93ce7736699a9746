package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

const (
	DefaultBasketTTL   = 30 * time.Minute
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
	// MaxIdempotencyKeyLength is the width of the stored request key.
	MaxIdempotencyKeyLength = 255
)

var _ ports.Service = (*Service)(nil)

// Service orchestrates order commits and conversational baskets.
type Service struct {
	repo      ports.Repository
	stock     ports.StockReader
	baskets   ports.BasketStore
	committer ports.Committer
	numbers   domain.NumberGenerator
	now       func() time.Time
	ttl       time.Duration
}

// Option configures optional collaborators.
type Option func(*Service)

// WithCommitter routes commits through c instead of committing in process.
func WithCommitter(c ports.Committer) Option {
	return func(s *Service) { s.committer = c }
}

// WithClock overrides the clock used for basket expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBasketTTL sets how long an idle basket survives.
func WithBasketTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithNumberGenerator overrides the order number source.
func WithNumberGenerator(gen domain.NumberGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.numbers = gen
		}
	}
}

func NewService(repo ports.Repository, stock ports.StockReader, baskets ports.BasketStore, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		stock:   stock,
		baskets: baskets,
		now:     time.Now,
		ttl:     DefaultBasketTTL,
	}
	if gen, err := domain.NewNumberGenerator(); err == nil {
		s.numbers = gen
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder commits lines as one order, through the configured committer if any.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if input.OwnerID <= 0 {
		return nil, apperrors.Invalid("ownerId", "owner id must be greater than zero")
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.IdempotencyKey)) > MaxIdempotencyKeyLength {
		return nil, apperrors.Invalid("idempotencyKey", "must be at most %d characters", MaxIdempotencyKeyLength)
	}
	lines, err := domain.NormalizeLines(input.Lines)
	if err != nil {
		return nil, mapError("place order", err)
	}
	input.Lines = lines
	if s.committer != nil {
		order, err := s.committer.Commit(ctx, input)
		return order, mapError("place order", err)
	}
	return s.Commit(ctx, input)
}

// Commit performs the in-process commit. Durable committers call it from
// their activity, so it must stay safe to repeat under the same key.
func (s *Service) Commit(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	lines, err := domain.NormalizeLines(input.Lines)
	if err != nil {
		return nil, mapError("commit order", err)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var hash string
	if key != "" {
		if hash, err = FingerprintLines(input.OwnerID, lines); err != nil {
			return nil, mapError("commit order", err)
		}
		existing, err := s.replay(ctx, input.OwnerID, key, hash)
		if existing != nil || err != nil {
			return existing, err
		}
	}
	if s.numbers == nil {
		return nil, apperrors.Persistence("commit order", errors.New("order number generator not configured"))
	}
	order, err := s.repo.Commit(ctx, ports.CommitRequest{
		OwnerID:     input.OwnerID,
		Lines:       lines,
		RequestKey:  key,
		RequestHash: hash,
		NextNumber:  s.numbers,
	})
	if err != nil && key != "" && errors.Is(err, apperrors.ErrConflict) {
		// A concurrent request with the same key won the race.
		if existing, replayErr := s.replay(ctx, input.OwnerID, key, hash); existing != nil || replayErr != nil {
			return existing, replayErr
		}
	}
	return order, mapError("commit order", err)
}

func (s *Service) replay(ctx context.Context, ownerID int64, key, hash string) (*domain.Order, error) {
	existing, storedHash, err := s.repo.GetByRequestKey(ctx, ownerID, key)
	switch {
	case err == nil && storedHash != hash:
		return nil, &apperrors.ConflictError{Entity: "order", Field: "idempotencyKey", Value: key, Reason: "key was already used for a different order"}
	case err == nil:
		return existing, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, nil
	}
	return nil, mapError("commit order", err)
}

func (s *Service) GetOrder(ctx context.Context, ownerID int64, number string) (*domain.Order, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, apperrors.Invalid("number", "order number is required")
	}
	order, err := s.repo.GetByNumber(ctx, ownerID, number)
	return order, mapError("get order", err)
}

// ListRecentOrders returns the newest orders first. A non-positive limit means the default.
func (s *Service) ListRecentOrders(ctx context.Context, ownerID int64, limit int) ([]*domain.Order, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	orders, err := s.repo.ListRecent(ctx, ownerID, limit)
	return orders, mapError("list orders", err)
}

// BeginBasket opens a fresh basket over the products in stock right now,
// replacing any basket the conversation already had.
func (s *Service) BeginBasket(ctx context.Context, ownerID int64, conversationID string) (*domain.Basket, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	key := domain.Key{OwnerID: ownerID, ConversationID: conversationID}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	offer, err := s.stock.Offer(ctx, ownerID)
	if err != nil {
		return nil, mapError("begin basket", err)
	}
	basket, err := domain.NewBasket(key, offer, s.now(), s.ttl)
	if err != nil {
		return nil, mapError("begin basket", err)
	}
	if err := s.baskets.Save(ctx, basket); err != nil {
		return nil, mapError("begin basket", err)
	}
	return basket, nil
}

func (s *Service) GetBasket(ctx context.Context, key domain.Key) (*domain.Basket, error) {
	basket, err := s.load(ctx, key)
	return basket, mapError("get basket", err)
}

// SelectProducts applies a selection and checks the chosen products are still in stock.
func (s *Service) SelectProducts(ctx context.Context, key domain.Key, selection ports.Selection) (*domain.Basket, error) {
	basket, err := s.load(ctx, key)
	if err != nil {
		return nil, mapError("select products", err)
	}
	switch {
	case len(selection.Positions) > 0 && len(selection.ProductIDs) > 0:
		return nil, &apperrors.SelectionError{Reason: "select by position or by product id, not both"}
	case len(selection.ProductIDs) > 0:
		err = basket.SelectProducts(selection.ProductIDs)
	default:
		err = basket.SelectPositions(selection.Positions)
	}
	if err != nil {
		return nil, mapError("select products", err)
	}
	levels, err := s.stock.Levels(ctx, key.OwnerID, basket.Selected)
	if err != nil {
		return nil, mapError("select products", err)
	}
	for _, id := range basket.Selected {
		if level, ok := levels[id]; !ok || level.Available <= 0 {
			return nil, &apperrors.SelectionError{Reason: fmt.Sprintf("%q is out of stock", basket.ProductName(id))}
		}
	}
	return s.save(ctx, basket, "select products")
}

// EnterQuantities pairs quantities with the selected products in order.
func (s *Service) EnterQuantities(ctx context.Context, key domain.Key, quantities []int64) (*domain.Basket, error) {
	basket, err := s.load(ctx, key)
	if err != nil {
		return nil, mapError("enter quantities", err)
	}
	if err := basket.CanEnterQuantities(); err != nil {
		return nil, mapError("enter quantities", err)
	}
	levels, err := s.stock.Levels(ctx, key.OwnerID, basket.Selected)
	if err != nil {
		return nil, mapError("enter quantities", err)
	}
	if err := basket.EnterQuantities(quantities, levels); err != nil {
		return nil, mapError("enter quantities", err)
	}
	return s.save(ctx, basket, "enter quantities")
}

// ConfirmBasket commits the basket. On failure the basket is left as it was;
// on success it is removed.
func (s *Service) ConfirmBasket(ctx context.Context, key domain.Key) (*domain.Order, error) {
	basket, err := s.load(ctx, key)
	if err != nil {
		return nil, mapError("confirm basket", err)
	}
	if err := basket.CanConfirm(); err != nil {
		return nil, mapError("confirm basket", err)
	}
	order, err := s.PlaceOrder(ctx, ports.PlaceOrderInput{
		OwnerID:        key.OwnerID,
		Lines:          basket.Lines(),
		IdempotencyKey: BasketRequestKey(basket),
	})
	if err != nil {
		return nil, err
	}
	if err := basket.MarkConfirmed(); err != nil {
		return nil, mapError("confirm basket", err)
	}
	if err := s.baskets.Delete(ctx, key); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, mapError("confirm basket", err)
	}
	return order, nil
}

// CancelBasket discards the basket.
func (s *Service) CancelBasket(ctx context.Context, key domain.Key) error {
	basket, err := s.load(ctx, key)
	if err != nil {
		return mapError("cancel basket", err)
	}
	if err := basket.Cancel(); err != nil {
		return mapError("cancel basket", err)
	}
	return mapError("cancel basket", s.baskets.Delete(ctx, key))
}

// PurgeExpiredBaskets removes baskets whose TTL elapsed and reports how many.
func (s *Service) PurgeExpiredBaskets(ctx context.Context) (int64, error) {
	n, err := s.baskets.PurgeExpired(ctx, s.now())
	return n, mapError("purge baskets", err)
}

func (s *Service) load(ctx context.Context, key domain.Key) (*domain.Basket, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	basket, err := s.baskets.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if basket.Expired(s.now()) {
		return nil, apperrors.NotFound("basket", key.String())
	}
	return basket, nil
}

func (s *Service) save(ctx context.Context, basket *domain.Basket, op string) (*domain.Basket, error) {
	basket.Touch(s.now(), s.ttl)
	if err := s.baskets.Save(ctx, basket); err != nil {
		return nil, mapError(op, err)
	}
	return basket, nil
}
