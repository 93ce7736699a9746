package mapper

import (
	"github.com/Apurer/storekeeper/internal/domains/analytics/domain"
	"github.com/Apurer/storekeeper/internal/domains/analytics/ports"
	"github.com/Apurer/storekeeper/internal/shared/projection"
)

// Period echoes the resolved window.
type Period struct {
	Kind  string  `json:"kind"`
	Label string  `json:"label"`
	From  *string `json:"from"`
	To    string  `json:"to"`
}

// TopProduct is one ranked product.
type TopProduct struct {
	ProductID       int64  `json:"productId"`
	Name            string `json:"name"`
	Quantity        int64  `json:"quantity"`
	ProfitPerUnit   string `json:"profitPerUnit"`
	PotentialProfit string `json:"potentialProfit"`
}

// Report is the HTTP representation of a period report.
type Report struct {
	Period           Period       `json:"period"`
	TotalOrders      int64        `json:"totalOrders"`
	TotalRevenue     string       `json:"totalRevenue"`
	TotalProfit      string       `json:"totalProfit"`
	TotalItemsSold   int64        `json:"totalItemsSold"`
	TotalExpenses    string       `json:"totalExpenses"`
	InventoryValue   string       `json:"inventoryValue"`
	InventoryItems   int64        `json:"inventoryItems"`
	ProductCount     int64        `json:"productCount"`
	PotentialProfit  string       `json:"potentialProfit"`
	MarginPercent    string       `json:"marginPercent"`
	AvgOrderValue    string       `json:"avgOrderValue"`
	AvgItemsPerOrder string       `json:"avgItemsPerOrder"`
	ROIPercent       string       `json:"roiPercent"`
	TopProducts      []TopProduct `json:"topProducts"`
}

// ToReportInput maps query parameters onto the service input.
func ToReportInput(ownerID int64, period, start, end string) ports.ReportInput {
	return ports.ReportInput{OwnerID: ownerID, Period: period, Start: start, End: end}
}

func FromReport(r *domain.Report) Report {
	out := Report{
		Period: Period{
			Kind:  string(r.Period.Kind),
			Label: r.Period.Label(),
			From:  projection.OptionalTimestamp(r.Period.From),
			To:    projection.Timestamp(r.Period.To),
		},
		TotalOrders:      r.TotalOrders,
		TotalRevenue:     projection.Money(r.TotalRevenue),
		TotalProfit:      projection.Money(r.TotalProfit),
		TotalItemsSold:   r.TotalItemsSold,
		TotalExpenses:    projection.Money(r.TotalExpenses),
		InventoryValue:   projection.Money(r.InventoryValue),
		InventoryItems:   r.InventoryItems,
		ProductCount:     r.ProductCount,
		PotentialProfit:  projection.Money(r.PotentialProfit),
		MarginPercent:    projection.Percent(r.MarginPercent),
		AvgOrderValue:    projection.Money(r.AvgOrderValue),
		AvgItemsPerOrder: r.AvgItemsPerOrder.StringFixed(2),
		ROIPercent:       projection.Percent(r.ROIPercent),
		TopProducts:      make([]TopProduct, 0, len(r.TopProducts)),
	}
	for _, p := range r.TopProducts {
		out.TopProducts = append(out.TopProducts, TopProduct{
			ProductID:       p.ProductID,
			Name:            p.Name,
			Quantity:        p.Quantity,
			ProfitPerUnit:   projection.Money(p.ProfitPerUnit),
			PotentialProfit: projection.Money(p.PotentialProfit),
		})
	}
	return out
}
