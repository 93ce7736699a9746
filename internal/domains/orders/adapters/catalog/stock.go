// Package catalog adapts the catalog store to the order engine's stock view.
package catalog

import (
	"context"

	catalogports "github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
)

var _ ports.StockReader = (*StockReader)(nil)

// StockReader reads stock through the catalog repository.
type StockReader struct {
	repo catalogports.Repository
}

func NewStockReader(repo catalogports.Repository) *StockReader {
	return &StockReader{repo: repo}
}

func (s *StockReader) Offer(ctx context.Context, ownerID int64) ([]domain.OfferEntry, error) {
	products, err := s.repo.ListProducts(ctx, ownerID, catalogports.ProductFilter{InStockOnly: true})
	if err != nil {
		return nil, err
	}
	offer := make([]domain.OfferEntry, 0, len(products))
	for _, p := range products {
		offer = append(offer, domain.OfferEntry{
			ProductID:     p.ID,
			Name:          p.Name,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			Available:     p.Quantity,
		})
	}
	return offer, nil
}

func (s *StockReader) Levels(ctx context.Context, ownerID int64, productIDs []int64) (map[int64]domain.StockLevel, error) {
	if len(productIDs) == 0 {
		return map[int64]domain.StockLevel{}, nil
	}
	products, err := s.repo.ListProducts(ctx, ownerID, catalogports.ProductFilter{IDs: productIDs})
	if err != nil {
		return nil, err
	}
	levels := make(map[int64]domain.StockLevel, len(productIDs))
	for _, p := range products {
		levels[p.ID] = domain.StockLevel{
			ProductID:     p.ID,
			Name:          p.Name,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			Available:     p.Quantity,
		}
	}
	return levels, nil
}
