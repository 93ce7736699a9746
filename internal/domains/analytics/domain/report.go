package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/shared/pricing"
)

// TopProductsLimit is the size of the potential-profit ranking.
const TopProductsLimit = 5

// SaleLine is the snapshot of one sold line.
type SaleLine struct {
	ProductID int64
	Quantity  int64
	UnitCost  decimal.Decimal
}

// Sale is a committed order as seen by the report.
type Sale struct {
	Amount decimal.Decimal
	Profit decimal.Decimal
	Lines  []SaleLine
}

// StockItem is a current catalog product as seen by the report.
type StockItem struct {
	ProductID     int64
	Name          string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Quantity      int64
}

// PotentialProfit is the profit of selling the whole stock at current prices.
func (s StockItem) PotentialProfit() decimal.Decimal {
	return pricing.LineProfit(s.PurchasePrice, s.SalePrice, s.Quantity)
}

// TopProduct is one ranked catalog entry.
type TopProduct struct {
	ProductID       int64
	Name            string
	Quantity        int64
	ProfitPerUnit   decimal.Decimal
	PotentialProfit decimal.Decimal
}

// Report aggregates sales in a period and the current catalog.
type Report struct {
	Period Period

	TotalOrders    int64
	TotalRevenue   decimal.Decimal
	TotalProfit    decimal.Decimal
	TotalItemsSold int64
	TotalExpenses  decimal.Decimal

	InventoryValue  decimal.Decimal
	InventoryItems  int64
	ProductCount    int64
	PotentialProfit decimal.Decimal

	MarginPercent    decimal.Decimal
	AvgOrderValue    decimal.Decimal
	AvgItemsPerOrder decimal.Decimal
	ROIPercent       decimal.Decimal

	TopProducts []TopProduct
}

// BuildReport reduces sales and stock into a report. It has no side effects and
// yields zero metrics for empty input. Stock is expected in catalog order so
// that products with equal potential profit keep that order in the ranking.
func BuildReport(period Period, sales []Sale, stock []StockItem) Report {
	r := Report{
		Period:          period,
		TotalRevenue:    decimal.Zero,
		TotalProfit:     decimal.Zero,
		TotalExpenses:   decimal.Zero,
		InventoryValue:  decimal.Zero,
		PotentialProfit: decimal.Zero,
	}

	for _, sale := range sales {
		r.TotalOrders++
		r.TotalRevenue = r.TotalRevenue.Add(sale.Amount)
		r.TotalProfit = r.TotalProfit.Add(sale.Profit)
		for _, line := range sale.Lines {
			r.TotalItemsSold += line.Quantity
			r.TotalExpenses = r.TotalExpenses.Add(pricing.LineCost(line.UnitCost, line.Quantity))
		}
	}

	for _, item := range stock {
		r.ProductCount++
		r.InventoryItems += item.Quantity
		r.InventoryValue = r.InventoryValue.Add(pricing.LineCost(item.PurchasePrice, item.Quantity))
		r.PotentialProfit = r.PotentialProfit.Add(item.PotentialProfit())
	}

	r.MarginPercent = pricing.MarginPercent(r.TotalProfit, r.TotalRevenue)
	r.AvgOrderValue = pricing.Average(r.TotalRevenue, r.TotalOrders)
	r.AvgItemsPerOrder = pricing.Average(decimal.NewFromInt(r.TotalItemsSold), r.TotalOrders)
	r.ROIPercent = pricing.ROIPercent(r.TotalProfit, r.TotalExpenses.Add(r.InventoryValue))
	r.TopProducts = rankByPotentialProfit(stock, TopProductsLimit)
	return r
}

func rankByPotentialProfit(stock []StockItem, limit int) []TopProduct {
	ranked := make([]TopProduct, 0, len(stock))
	for _, item := range stock {
		ranked = append(ranked, TopProduct{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			ProfitPerUnit:   pricing.ProfitPerUnit(item.PurchasePrice, item.SalePrice),
			PotentialProfit: item.PotentialProfit(),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PotentialProfit.GreaterThan(ranked[j].PotentialProfit)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
