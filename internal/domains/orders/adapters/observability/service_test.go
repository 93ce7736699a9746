package observability

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

type fakeService struct {
	ports.Service
	order *domain.Order
	err   error
}

func (f *fakeService) PlaceOrder(context.Context, ports.PlaceOrderInput) (*domain.Order, error) {
	return f.order, f.err
}

func TestPlaceOrderRecordsSpanAndCounters(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inner := &fakeService{order: &domain.Order{Number: "ABCDEFGH", OwnerID: 1, TotalAmount: decimal.NewFromInt(45)}}
	svc := New(inner, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))

	order, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGH", order.Number)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "Service.PlaceOrder", ended[0].Name())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["orders.service.committed"])
	assert.True(t, names["orders.service.committed_amount"])
}

func TestPlaceOrderPassesTypedErrorsThrough(t *testing.T) {
	inner := &fakeService{err: apperrors.NewInsufficientStock(apperrors.Shortage{ProductID: 1, Available: 2})}
	svc := New(inner)

	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{OwnerID: 1})
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
}
