package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
	"github.com/Apurer/storekeeper/internal/shared/pricing"
)

var (
	ErrNoLines         = errors.New("order needs at least one line")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidProduct  = errors.New("product id must be greater than zero")
	ErrQuantityTooBig  = errors.New("combined quantity exceeds the supported range")
)

// Line is one requested (product, quantity) pair.
type Line struct {
	ProductID int64
	Quantity  int64
}

// StockLevel is the commit-time view of a product used to price a line.
type StockLevel struct {
	ProductID     int64
	Name          string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Available     int64
}

// Item is an immutable order line. Prices, cost and profit are snapshots taken
// at commit time and never recomputed from the live product.
type Item struct {
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
	Amount      decimal.Decimal
	Profit      decimal.Decimal
}

// Cost is the line's expense at its snapshot cost basis.
func (i Item) Cost() decimal.Decimal {
	return pricing.LineCost(i.UnitCost, i.Quantity)
}

// Order is a committed sale.
type Order struct {
	ID          int64
	OwnerID     int64
	Number      string
	Items       []Item
	TotalAmount decimal.Decimal
	TotalProfit decimal.Decimal
	CreatedAt   time.Time
}

// TotalQuantity sums the quantities of every line.
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TotalCost sums the snapshot cost of every line.
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Cost())
	}
	return total
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}

// NormalizeLines validates lines and merges repeated products, keeping first-seen order.
func NormalizeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewValidation("lines", ErrNoLines)
	}
	merged := make([]Line, 0, len(lines))
	index := map[int64]int{}
	for i, line := range lines {
		if line.ProductID <= 0 {
			return nil, apperrors.NewValidation(lineField(i, "productId"), ErrInvalidProduct)
		}
		if line.Quantity <= 0 {
			return nil, apperrors.NewValidation(lineField(i, "quantity"), ErrInvalidQuantity)
		}
		if at, ok := index[line.ProductID]; ok {
			if merged[at].Quantity > math.MaxInt64-line.Quantity {
				return nil, apperrors.NewValidation(lineField(i, "quantity"),
					fmt.Errorf("product %d: %w", line.ProductID, ErrQuantityTooBig))
			}
			merged[at].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// Draft prices lines against current stock. Every short line is reported
// together; nothing is priced unless all lines can be served.
func Draft(ownerID int64, lines []Line, stock map[int64]StockLevel) (*Order, error) {
	lines, err := NormalizeLines(lines)
	if err != nil {
		return nil, err
	}
	var shortages []apperrors.Shortage
	for _, line := range lines {
		level, ok := stock[line.ProductID]
		if !ok {
			return nil, apperrors.NotFound("product", line.ProductID)
		}
		if line.Quantity > level.Available {
			shortages = append(shortages, apperrors.Shortage{
				ProductID: line.ProductID,
				Name:      level.Name,
				Requested: line.Quantity,
				Available: level.Available,
			})
		}
	}
	if len(shortages) > 0 {
		return nil, apperrors.NewInsufficientStock(shortages...)
	}

	order := &Order{OwnerID: ownerID, Items: make([]Item, 0, len(lines))}
	for _, line := range lines {
		level := stock[line.ProductID]
		order.Items = append(order.Items, Item{
			ProductID:   line.ProductID,
			ProductName: level.Name,
			Quantity:    line.Quantity,
			UnitPrice:   level.SalePrice,
			UnitCost:    level.PurchasePrice,
			Amount:      pricing.LineAmount(level.SalePrice, line.Quantity),
			Profit:      pricing.LineProfit(level.PurchasePrice, level.SalePrice, line.Quantity),
		})
	}
	for i, item := range order.Items {
		if err := checkMoney(item.Amount, item.Profit); err != nil {
			return nil, apperrors.NewValidation(lineField(i, "quantity"),
				fmt.Errorf("product %d: %w", item.ProductID, err))
		}
	}
	order.TotalAmount, order.TotalProfit = sumItems(order.Items)
	if err := checkMoney(order.TotalAmount, order.TotalProfit); err != nil {
		return nil, apperrors.NewValidation("lines", err)
	}
	return order, nil
}

func checkMoney(amounts ...decimal.Decimal) error {
	for _, amount := range amounts {
		if err := pricing.CheckAmount(amount); err != nil {
			return err
		}
	}
	return nil
}

func sumItems(items []Item) (decimal.Decimal, decimal.Decimal) {
	amount, profit := decimal.Zero, decimal.Zero
	for _, item := range items {
		amount = amount.Add(item.Amount)
		profit = profit.Add(item.Profit)
	}
	return amount, profit
}

func lineField(i int, name string) string {
	return "lines[" + strconv.Itoa(i) + "]." + name
}
