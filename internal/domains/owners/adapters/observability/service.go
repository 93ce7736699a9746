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

	"github.com/Apurer/storekeeper/internal/domains/owners/domain"
	"github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

const tracerName = "github.com/Apurer/storekeeper/internal/domains/owners/adapters/observability/service"

// Service decorates the owners application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.Owner, error) {
	ctx, span := s.startSpan(ctx, "Service.Register", attribute.Int64("owner.chat_id", input.ChatID))
	defer span.End()

	owner, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register owner", slog.Int64("chat.id", input.ChatID))
	}
	addCounter(ctx, s.metrics.registered, 1)
	span.SetAttributes(attribute.Int64("owner.id", owner.ID))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "owner registered", slog.Int64("owner.id", owner.ID), slog.String("language", string(owner.Language)))
	return owner, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Owner, error) {
	ctx, span := s.startSpan(ctx, "Service.Get", attribute.Int64("owner.id", id))
	defer span.End()

	owner, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get owner", slog.Int64("owner.id", id))
	}
	return owner, nil
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (*domain.Owner, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByChatID", attribute.Int64("owner.chat_id", chatID))
	defer span.End()

	owner, err := s.inner.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get owner by chat", slog.Int64("chat.id", chatID))
	}
	return owner, nil
}

func (s *Service) UpdateSettings(ctx context.Context, id int64, input ports.SettingsInput) (*domain.Owner, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateSettings", attribute.Int64("owner.id", id))
	defer span.End()

	owner, err := s.inner.UpdateSettings(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update owner settings", slog.Int64("owner.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "owner settings updated", slog.Int64("owner.id", id))
	return owner, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) (*domain.Owner, error) {
	ctx, span := s.startSpan(ctx, "Service.Deactivate", attribute.Int64("owner.id", id))
	defer span.End()

	owner, err := s.inner.Deactivate(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to deactivate owner", slog.Int64("owner.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "owner deactivated", slog.Int64("owner.id", id))
	return owner, nil
}

func (s *Service) StoreInfo(ctx context.Context, id int64) (*ports.StoreInfo, error) {
	ctx, span := s.startSpan(ctx, "Service.StoreInfo", attribute.Int64("owner.id", id))
	defer span.End()

	info, err := s.inner.StoreInfo(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load store info", slog.Int64("owner.id", id))
	}
	return info, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "Service.Delete", attribute.Int64("owner.id", id))
	defer span.End()

	if err := s.inner.Delete(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete owner", slog.Int64("owner.id", id))
	}
	addCounter(ctx, s.metrics.deleted, 1)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "owner deleted", slog.Int64("owner.id", id))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	level := slog.LevelWarn
	if errors.Is(err, apperrors.ErrPersistence) || !apperrors.IsKnown(err) {
		level = slog.LevelError
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type serviceMetrics struct {
	registered metric.Int64Counter
	deleted    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("owners.service.registered", metric.WithDescription("Number of owners registered"))
	deleted, _ := m.Int64Counter("owners.service.deleted", metric.WithDescription("Number of owners deleted"))
	return serviceMetrics{registered: registered, deleted: deleted}
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value)
}

var _ ports.Service = (*Service)(nil)
