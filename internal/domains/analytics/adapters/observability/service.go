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

	"github.com/Apurer/storekeeper/internal/domains/analytics/domain"
	"github.com/Apurer/storekeeper/internal/domains/analytics/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

const tracerName = "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/observability/service"

// Service decorates report computation with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	reports metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.reports, _ = m.Int64Counter("analytics.reports.computed", metric.WithDescription("Number of reports computed"))
	}
}

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

func (s *Service) ComputeReport(ctx context.Context, input ports.ReportInput) (*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ComputeReport", trace.WithAttributes(
		attribute.Int64("owner.id", input.OwnerID),
		attribute.String("report.period", input.Period),
	))
	defer span.End()

	report, err := s.inner.ComputeReport(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelWarn
		if errors.Is(err, apperrors.ErrPersistence) || !apperrors.IsKnown(err) {
			level = slog.LevelError
		}
		s.logger.LogAttrs(ctx, level, "failed to compute report",
			slog.Int64("owner.id", input.OwnerID),
			slog.String("period", input.Period),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	kind := string(report.Period.Kind)
	span.SetAttributes(
		attribute.String("report.kind", kind),
		attribute.Int64("report.orders", report.TotalOrders),
	)
	if s.reports != nil {
		s.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("report.kind", kind)))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "report computed",
		slog.Int64("owner.id", input.OwnerID),
		slog.String("period", kind),
		slog.Int64("orders", report.TotalOrders),
		slog.String("revenue", report.TotalRevenue.StringFixed(2)),
	)
	return report, nil
}

var _ ports.Service = (*Service)(nil)
