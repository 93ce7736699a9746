package orders

import (
	"context"
	"time"

	"github.com/Apurer/storekeeper/internal/domains/analytics/domain"
	"github.com/Apurer/storekeeper/internal/domains/analytics/ports"
	ordersdomain "github.com/Apurer/storekeeper/internal/domains/orders/domain"
	ordersports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
)

var _ ports.SalesReader = (*SalesReader)(nil)

// SalesReader reads committed orders through the order repository.
type SalesReader struct {
	repo ordersports.Repository
}

func NewSalesReader(repo ordersports.Repository) *SalesReader {
	return &SalesReader{repo: repo}
}

func (r *SalesReader) SalesBetween(ctx context.Context, ownerID int64, from *time.Time, to time.Time) ([]domain.Sale, error) {
	orders, err := r.repo.ListInRange(ctx, ownerID, ordersports.Range{From: from, To: to})
	if err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(orders))
	for _, order := range orders {
		sales = append(sales, toSale(order))
	}
	return sales, nil
}

func toSale(order *ordersdomain.Order) domain.Sale {
	lines := make([]domain.SaleLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, domain.SaleLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}
	return domain.Sale{Amount: order.TotalAmount, Profit: order.TotalProfit, Lines: lines}
}
