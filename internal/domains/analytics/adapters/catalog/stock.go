package catalog

import (
	"context"

	"github.com/Apurer/storekeeper/internal/domains/analytics/domain"
	"github.com/Apurer/storekeeper/internal/domains/analytics/ports"
	catalogports "github.com/Apurer/storekeeper/internal/domains/catalog/ports"
)

var _ ports.StockReader = (*StockReader)(nil)

// StockReader reads the live catalog; it is not filtered by period.
type StockReader struct {
	repo catalogports.Repository
}

func NewStockReader(repo catalogports.Repository) *StockReader {
	return &StockReader{repo: repo}
}

func (r *StockReader) StockItems(ctx context.Context, ownerID int64) ([]domain.StockItem, error) {
	products, err := r.repo.ListProducts(ctx, ownerID, catalogports.ProductFilter{})
	if err != nil {
		return nil, err
	}
	items := make([]domain.StockItem, 0, len(products))
	for _, p := range products {
		items = append(items, domain.StockItem{
			ProductID:     p.ID,
			Name:          p.Name,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			Quantity:      p.Quantity,
		})
	}
	return items, nil
}
