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

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

const tracerName = "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog application port with tracing, logging, and metrics.
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

func (s *Service) CreateCategory(ctx context.Context, ownerID int64, input ports.CreateCategoryInput) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateCategory", attribute.Int64("owner.id", ownerID))
	defer span.End()

	category, err := s.inner.CreateCategory(ctx, ownerID, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create category", slog.Int64("owner.id", ownerID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "category created", slog.Int64("owner.id", ownerID), slog.Int64("category.id", category.ID))
	return category, nil
}

func (s *Service) GetCategory(ctx context.Context, ownerID, id int64) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.GetCategory", attribute.Int64("owner.id", ownerID), attribute.Int64("category.id", id))
	defer span.End()

	category, err := s.inner.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get category", slog.Int64("owner.id", ownerID), slog.Int64("category.id", id))
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context, ownerID int64) ([]*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.ListCategories", attribute.Int64("owner.id", ownerID))
	defer span.End()

	categories, err := s.inner.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list categories", slog.Int64("owner.id", ownerID))
	}
	span.SetAttributes(attribute.Int("category.result.count", len(categories)))
	return categories, nil
}

func (s *Service) UpdateCategory(ctx context.Context, ownerID, id int64, input ports.UpdateCategoryInput) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateCategory", attribute.Int64("owner.id", ownerID), attribute.Int64("category.id", id))
	defer span.End()

	category, err := s.inner.UpdateCategory(ctx, ownerID, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update category", slog.Int64("owner.id", ownerID), slog.Int64("category.id", id))
	}
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteCategory", attribute.Int64("owner.id", ownerID), attribute.Int64("category.id", id))
	defer span.End()

	if err := s.inner.DeleteCategory(ctx, ownerID, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete category", slog.Int64("owner.id", ownerID), slog.Int64("category.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "category deleted", slog.Int64("owner.id", ownerID), slog.Int64("category.id", id))
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, ownerID int64, input ports.CreateProductInput) (*domain.Product, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateProduct", attribute.Int64("owner.id", ownerID))
	defer span.End()

	product, err := s.inner.CreateProduct(ctx, ownerID, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product", slog.Int64("owner.id", ownerID))
	}
	s.metrics.recordProduct(ctx, "create", product)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product created",
		slog.Int64("owner.id", ownerID),
		slog.Int64("product.id", product.ID),
		slog.Int64("quantity", product.Quantity),
	)
	s.warnBelowCost(ctx, product)
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, ownerID, id int64) (*domain.Product, error) {
	ctx, span := s.startSpan(ctx, "Service.GetProduct", attribute.Int64("owner.id", ownerID), attribute.Int64("product.id", id))
	defer span.End()

	product, err := s.inner.GetProduct(ctx, ownerID, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get product", slog.Int64("owner.id", ownerID), slog.Int64("product.id", id))
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, ownerID int64, categoryID *int64) ([]*domain.Product, error) {
	attrs := []attribute.KeyValue{attribute.Int64("owner.id", ownerID)}
	if categoryID != nil {
		attrs = append(attrs, attribute.Int64("category.id", *categoryID))
	}
	ctx, span := s.startSpan(ctx, "Service.ListProducts", attrs...)
	defer span.End()

	products, err := s.inner.ListProducts(ctx, ownerID, categoryID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products", slog.Int64("owner.id", ownerID))
	}
	span.SetAttributes(attribute.Int("product.result.count", len(products)))
	return products, nil
}

func (s *Service) UpdateProduct(ctx context.Context, ownerID, id int64, edits ...domain.Edit) (*domain.Product, error) {
	fields := make([]string, 0, len(edits))
	for _, edit := range edits {
		if edit != nil {
			fields = append(fields, string(edit.Field()))
		}
	}
	ctx, span := s.startSpan(ctx, "Service.UpdateProduct",
		attribute.Int64("owner.id", ownerID),
		attribute.Int64("product.id", id),
		attribute.StringSlice("product.fields", fields),
	)
	defer span.End()

	product, err := s.inner.UpdateProduct(ctx, ownerID, id, edits...)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.Int64("owner.id", ownerID), slog.Int64("product.id", id))
	}
	s.metrics.recordProduct(ctx, "update", product)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product updated",
		slog.Int64("owner.id", ownerID),
		slog.Int64("product.id", id),
		slog.Any("fields", fields),
	)
	s.warnBelowCost(ctx, product)
	return product, nil
}

func (s *Service) AdjustQuantity(ctx context.Context, ownerID, id, delta int64) (int64, error) {
	ctx, span := s.startSpan(ctx, "Service.AdjustQuantity",
		attribute.Int64("owner.id", ownerID),
		attribute.Int64("product.id", id),
		attribute.Int64("stock.delta", delta),
	)
	defer span.End()

	qty, err := s.inner.AdjustQuantity(ctx, ownerID, id, delta)
	if err != nil {
		return qty, s.handleError(ctx, span, err, "failed to adjust quantity", slog.Int64("owner.id", ownerID), slog.Int64("product.id", id), slog.Int64("delta", delta))
	}
	span.SetAttributes(attribute.Int64("stock.quantity", qty))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stock adjusted", slog.Int64("product.id", id), slog.Int64("delta", delta), slog.Int64("quantity", qty))
	return qty, nil
}

func (s *Service) DeleteProduct(ctx context.Context, ownerID, id int64) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteProduct", attribute.Int64("owner.id", ownerID), attribute.Int64("product.id", id))
	defer span.End()

	if err := s.inner.DeleteProduct(ctx, ownerID, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete product", slog.Int64("owner.id", ownerID), slog.Int64("product.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product deleted", slog.Int64("owner.id", ownerID), slog.Int64("product.id", id))
	return nil
}

func (s *Service) warnBelowCost(ctx context.Context, product *domain.Product) {
	if len(product.Warnings()) == 0 {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "product priced below cost",
		slog.Int64("product.id", product.ID),
		slog.String("purchase_price", product.PurchasePrice.StringFixed(2)),
		slog.String("sale_price", product.SalePrice.StringFixed(2)),
	)
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
	productsWritten metric.Int64Counter
	belowCost       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	productsWritten, _ := m.Int64Counter("catalog.products.written", metric.WithDescription("Number of products created or updated"))
	belowCost, _ := m.Int64Counter("catalog.products.below_cost", metric.WithDescription("Number of product writes priced below cost"))
	return serviceMetrics{productsWritten: productsWritten, belowCost: belowCost}
}

func (m serviceMetrics) recordProduct(ctx context.Context, op string, product *domain.Product) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	if m.productsWritten != nil {
		m.productsWritten.Add(ctx, 1, attrs)
	}
	if m.belowCost != nil && len(product.Warnings()) > 0 {
		m.belowCost.Add(ctx, 1, attrs)
	}
}

var _ ports.Service = (*Service)(nil)
