package mapper

import (
	"github.com/Apurer/storekeeper/internal/domains/orders/adapters/dialogue"
	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
	"github.com/Apurer/storekeeper/internal/shared/projection"
)

// OrderLine is one requested line of a direct order.
type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /orders.
type PlaceOrderRequest struct {
	Lines []OrderLine `json:"lines"`
}

// OrderItem is the HTTP representation of a committed line.
type OrderItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	UnitCost    string `json:"unitCost"`
	Amount      string `json:"amount"`
	Profit      string `json:"profit"`
}

// Order is the HTTP representation of a committed order.
type Order struct {
	Number      string      `json:"number"`
	Items       []OrderItem `json:"items"`
	TotalAmount string      `json:"totalAmount"`
	TotalProfit string      `json:"totalProfit"`
	CreatedAt   string      `json:"createdAt"`
}

// ToPlaceOrderInput maps the request onto the service input.
func ToPlaceOrderInput(ownerID int64, req PlaceOrderRequest, idempotencyKey string) ports.PlaceOrderInput {
	lines := make([]domain.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, domain.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return ports.PlaceOrderInput{OwnerID: ownerID, Lines: lines, IdempotencyKey: idempotencyKey}
}

func FromOrder(o *domain.Order) Order {
	out := Order{
		Number:      o.Number,
		Items:       make([]OrderItem, 0, len(o.Items)),
		TotalAmount: projection.Money(o.TotalAmount),
		TotalProfit: projection.Money(o.TotalProfit),
		CreatedAt:   projection.Timestamp(o.CreatedAt),
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   projection.Money(item.UnitPrice),
			UnitCost:    projection.Money(item.UnitCost),
			Amount:      projection.Money(item.Amount),
			Profit:      projection.Money(item.Profit),
		})
	}
	return out
}

func FromOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

// BeginBasketRequest is the optional body of POST /baskets.
type BeginBasketRequest struct {
	ConversationID string `json:"conversationId"`
}

// SelectionRequest picks products by position, by id, or by free text such as "1, 3".
type SelectionRequest struct {
	Positions  []int   `json:"positions,omitempty"`
	ProductIDs []int64 `json:"productIds,omitempty"`
	Text       string  `json:"text,omitempty"`
}

// QuantitiesRequest carries one quantity per selected product, as numbers or as text such as "2, 5".
type QuantitiesRequest struct {
	Quantities []int64 `json:"quantities,omitempty"`
	Text       string  `json:"text,omitempty"`
}

// ToSelection resolves the request, parsing Text when no structured selection is given.
func ToSelection(req SelectionRequest) (ports.Selection, error) {
	if len(req.Positions) == 0 && len(req.ProductIDs) == 0 && req.Text != "" {
		positions, err := dialogue.ParsePositions(req.Text)
		if err != nil {
			return ports.Selection{}, err
		}
		return ports.Selection{Positions: positions}, nil
	}
	if len(req.Positions) == 0 && len(req.ProductIDs) == 0 {
		return ports.Selection{}, &apperrors.SelectionError{Reason: "select at least one product"}
	}
	return ports.Selection{Positions: req.Positions, ProductIDs: req.ProductIDs}, nil
}

// ToQuantities resolves the request, parsing Text when no numbers are given.
func ToQuantities(req QuantitiesRequest) ([]int64, error) {
	if len(req.Quantities) == 0 && req.Text != "" {
		return dialogue.ParseQuantities(req.Text)
	}
	return req.Quantities, nil
}

// OfferEntry is one numbered product of a basket offer.
type OfferEntry struct {
	Position  int    `json:"position"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	SalePrice string `json:"salePrice"`
	Available int64  `json:"available"`
}

// PreviewLine is an uncommitted basket line.
type PreviewLine struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Amount    string `json:"amount"`
	Profit    string `json:"profit"`
}

// Basket is the HTTP representation of an in-progress basket.
type Basket struct {
	ConversationID string        `json:"conversationId"`
	State          string        `json:"state"`
	Offer          []OfferEntry  `json:"offer"`
	Selected       []int64       `json:"selected"`
	Quantities     []int64       `json:"quantities"`
	Preview        []PreviewLine `json:"preview,omitempty"`
	TotalAmount    string        `json:"totalAmount,omitempty"`
	TotalProfit    string        `json:"totalProfit,omitempty"`
	Prompt         string        `json:"prompt"`
	ExpiresAt      string        `json:"expiresAt"`
}

func FromBasket(b *domain.Basket) Basket {
	out := Basket{
		ConversationID: b.Key.ConversationID,
		State:          string(b.State),
		Offer:          make([]OfferEntry, 0, len(b.Offer)),
		Selected:       nonNil(b.Selected),
		Quantities:     nonNil(b.Quantities),
		ExpiresAt:      projection.Timestamp(b.ExpiresAt),
	}
	for i, e := range b.Offer {
		out.Offer = append(out.Offer, OfferEntry{
			Position:  i + 1,
			ProductID: e.ProductID,
			Name:      e.Name,
			SalePrice: projection.Money(e.SalePrice),
			Available: e.Available,
		})
	}
	switch b.State {
	case domain.StateQuantitiesEntered:
		lines, amount, profit := b.Preview()
		for _, l := range lines {
			out.Preview = append(out.Preview, PreviewLine{
				ProductID: l.ProductID,
				Name:      l.Name,
				Quantity:  l.Quantity,
				UnitPrice: projection.Money(l.UnitPrice),
				Amount:    projection.Money(l.Amount),
				Profit:    projection.Money(l.Profit),
			})
		}
		out.TotalAmount = projection.Money(amount)
		out.TotalProfit = projection.Money(profit)
		out.Prompt = dialogue.FormatSummary(b)
	default:
		out.Prompt = dialogue.FormatOffer(b)
	}
	return out
}

func nonNil(values []int64) []int64 {
	if values == nil {
		return []int64{}
	}
	return values
}
