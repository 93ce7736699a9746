package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/storekeeper/internal/domains/analytics/domain"
	"github.com/Apurer/storekeeper/internal/domains/analytics/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

var _ ports.Service = (*Service)(nil)

// Service computes period reports from sales history and the live catalog.
type Service struct {
	sales ports.SalesReader
	stock ports.StockReader
	now   func() time.Time
	loc   *time.Location
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the clock used to resolve periods.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone in which day, week, month and year boundaries fall.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(sales ports.SalesReader, stock ports.StockReader, opts ...Option) *Service {
	s := &Service{sales: sales, stock: stock, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ComputeReport(ctx context.Context, input ports.ReportInput) (*domain.Report, error) {
	if input.OwnerID <= 0 {
		return nil, apperrors.Invalid("ownerId", "owner id must be greater than zero")
	}
	period, err := domain.ParsePeriod(input.Period, input.Start, input.End, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	var (
		sales []domain.Sale
		stock []domain.StockItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.sales.SalesBetween(gctx, input.OwnerID, period.From, period.To)
		return mapError("analytics.sales", err)
	})
	g.Go(func() error {
		var err error
		stock, err = s.stock.StockItems(gctx, input.OwnerID)
		return mapError("analytics.stock", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := domain.BuildReport(period, sales, stock)
	return &report, nil
}
