package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

const tracerName = "github.com/Apurer/storekeeper/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder", attribute.Int64("owner.id", input.OwnerID), attribute.Int("order.lines", len(input.Lines)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int64("owner.id", input.OwnerID), slog.Int("lines", len(input.Lines)))
	order, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "direct", err)
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("owner.id", input.OwnerID))
	}
	s.recordCommitted(ctx, span, order, "direct")
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, ownerID int64, number string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.Int64("owner.id", ownerID), attribute.String("order.number", number))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, ownerID, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.Int64("owner.id", ownerID), slog.String("order.number", number))
	}
	return order, nil
}

func (s *Service) ListRecentOrders(ctx context.Context, ownerID int64, limit int) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListRecentOrders", attribute.Int64("owner.id", ownerID), attribute.Int("limit", limit))
	defer span.End()

	orders, err := s.inner.ListRecentOrders(ctx, ownerID, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Int64("owner.id", ownerID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

func (s *Service) BeginBasket(ctx context.Context, ownerID int64, conversationID string) (*domain.Basket, error) {
	ctx, span := s.startSpan(ctx, "Service.BeginBasket", attribute.Int64("owner.id", ownerID))
	defer span.End()

	basket, err := s.inner.BeginBasket(ctx, ownerID, conversationID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to begin basket", slog.Int64("owner.id", ownerID))
	}
	s.metrics.recordBasketStarted(ctx)
	span.SetAttributes(attribute.String("basket.key", basket.Key.String()), attribute.Int("basket.offer", len(basket.Offer)))
	s.logInfo(ctx, "basket started", slog.String("basket.key", basket.Key.String()), slog.Int("offer", len(basket.Offer)))
	return basket, nil
}

func (s *Service) GetBasket(ctx context.Context, key domain.Key) (*domain.Basket, error) {
	ctx, span := s.startSpan(ctx, "Service.GetBasket", attribute.String("basket.key", key.String()))
	defer span.End()

	basket, err := s.inner.GetBasket(ctx, key)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get basket", slog.String("basket.key", key.String()))
	}
	return basket, nil
}

func (s *Service) SelectProducts(ctx context.Context, key domain.Key, selection ports.Selection) (*domain.Basket, error) {
	ctx, span := s.startSpan(ctx, "Service.SelectProducts", attribute.String("basket.key", key.String()))
	defer span.End()

	basket, err := s.inner.SelectProducts(ctx, key, selection)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to select products", slog.String("basket.key", key.String()))
	}
	s.logInfo(ctx, "basket products selected", slog.String("basket.key", key.String()), slog.Any("products", basket.Selected))
	return basket, nil
}

func (s *Service) EnterQuantities(ctx context.Context, key domain.Key, quantities []int64) (*domain.Basket, error) {
	ctx, span := s.startSpan(ctx, "Service.EnterQuantities", attribute.String("basket.key", key.String()))
	defer span.End()

	basket, err := s.inner.EnterQuantities(ctx, key, quantities)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to enter quantities", slog.String("basket.key", key.String()))
	}
	return basket, nil
}

func (s *Service) ConfirmBasket(ctx context.Context, key domain.Key) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ConfirmBasket", attribute.String("basket.key", key.String()))
	defer span.End()

	s.logInfo(ctx, "confirming basket", slog.String("basket.key", key.String()))
	order, err := s.inner.ConfirmBasket(ctx, key)
	if err != nil {
		s.metrics.recordRejected(ctx, "basket", err)
		return nil, s.handleError(ctx, span, err, "failed to confirm basket", slog.String("basket.key", key.String()))
	}
	s.recordCommitted(ctx, span, order, "basket")
	return order, nil
}

func (s *Service) CancelBasket(ctx context.Context, key domain.Key) error {
	ctx, span := s.startSpan(ctx, "Service.CancelBasket", attribute.String("basket.key", key.String()))
	defer span.End()

	if err := s.inner.CancelBasket(ctx, key); err != nil {
		return s.handleError(ctx, span, err, "failed to cancel basket", slog.String("basket.key", key.String()))
	}
	s.logInfo(ctx, "basket cancelled", slog.String("basket.key", key.String()))
	return nil
}

func (s *Service) PurgeExpiredBaskets(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "Service.PurgeExpiredBaskets")
	defer span.End()

	purged, err := s.inner.PurgeExpiredBaskets(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge baskets")
	}
	s.metrics.recordPurged(ctx, purged)
	span.SetAttributes(attribute.Int64("basket.purged", purged))
	if purged > 0 {
		s.logInfo(ctx, "expired baskets purged", slog.Int64("count", purged))
	}
	return purged, nil
}

func (s *Service) recordCommitted(ctx context.Context, span trace.Span, order *domain.Order, source string) {
	if order == nil {
		return
	}
	s.metrics.recordCommitted(ctx, order, source)
	span.SetAttributes(attribute.String("order.number", order.Number), attribute.String("order.total", order.TotalAmount.StringFixed(2)))
	s.logInfo(ctx, "order committed",
		slog.String("order.number", order.Number),
		slog.Int64("owner.id", order.OwnerID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
		slog.String("profit", order.TotalProfit.StringFixed(2)),
	)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError records err on the span and logs it. Caller rejections are
// logged at warn level, storage failures at error level.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		level := slog.LevelWarn
		if errors.Is(err, apperrors.ErrPersistence) || !apperrors.IsKnown(err) {
			level = slog.LevelError
		}
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, level, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCommitted metric.Int64Counter
	ordersRejected  metric.Int64Counter
	revenue         metric.Float64Counter
	basketsStarted  metric.Int64Counter
	basketsPurged   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCommitted, _ := m.Int64Counter("orders.service.committed", metric.WithDescription("Number of orders committed"))
	ordersRejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order commits rejected"))
	revenue, _ := m.Float64Counter("orders.service.committed_amount", metric.WithDescription("Total amount of committed orders"))
	basketsStarted, _ := m.Int64Counter("orders.baskets.started", metric.WithDescription("Number of baskets started"))
	basketsPurged, _ := m.Int64Counter("orders.baskets.purged", metric.WithDescription("Number of expired baskets purged"))
	return serviceMetrics{
		ordersCommitted: ordersCommitted,
		ordersRejected:  ordersRejected,
		revenue:         revenue,
		basketsStarted:  basketsStarted,
		basketsPurged:   basketsPurged,
	}
}

func (m serviceMetrics) recordCommitted(ctx context.Context, order *domain.Order, source string) {
	addCounter(ctx, m.ordersCommitted, 1, attribute.String("order.source", source))
	if m.revenue != nil {
		m.revenue.Add(ctx, order.TotalAmount.InexactFloat64(), metric.WithAttributes(attribute.String("order.source", source)))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, source string, err error) {
	addCounter(ctx, m.ordersRejected, 1, attribute.String("order.source", source), attribute.String("reason", reasonOf(err)))
}

func (m serviceMetrics) recordBasketStarted(ctx context.Context) {
	addCounter(ctx, m.basketsStarted, 1)
}

func (m serviceMetrics) recordPurged(ctx context.Context, n int64) {
	addCounter(ctx, m.basketsPurged, n)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil || value == 0 {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

var _ ports.Service = (*Service)(nil)
