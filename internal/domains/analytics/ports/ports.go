package ports

import (
	"context"
	"time"

	"github.com/Apurer/storekeeper/internal/domains/analytics/domain"
)

// SalesReader loads committed sales of an owner created inside [from, to].
// A nil from is unbounded.
type SalesReader interface {
	SalesBetween(ctx context.Context, ownerID int64, from *time.Time, to time.Time) ([]domain.Sale, error)
}

// StockReader loads the owner's current catalog in catalog order.
type StockReader interface {
	StockItems(ctx context.Context, ownerID int64) ([]domain.StockItem, error)
}

// ReportInput is a period descriptor as supplied by a caller.
type ReportInput struct {
	OwnerID int64
	Period  string
	Start   string
	End     string
}

// Service computes reports. It never mutates anything.
type Service interface {
	ComputeReport(ctx context.Context, input ReportInput) (*domain.Report, error)
}
