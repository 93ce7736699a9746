package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/shared/pricing"
)

// Warning is a non-blocking notice attached to a product.
type Warning string

// WarningBelowCost flags a sale price lower than the purchase price.
const WarningBelowCost Warning = "sale_price_below_cost"

// Product is a stock-keeping item owned by one owner.
type Product struct {
	ID            int64
	OwnerID       int64
	CategoryID    *int64
	Name          string
	SKU           string
	Description   string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Quantity      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct validates and builds a product.
func NewProduct(ownerID int64, name string, purchasePrice, salePrice decimal.Decimal, quantity int64) (*Product, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	p := &Product{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(name),
		PurchasePrice: purchasePrice,
		SalePrice:     salePrice,
		Quantity:      quantity,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces the product invariants.
func (p *Product) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if p.PurchasePrice.IsNegative() {
		return ErrNegativePurchasePrice
	}
	if p.SalePrice.IsNegative() {
		return ErrNegativeSalePrice
	}
	if err := checkPrice(FieldPurchasePrice, p.PurchasePrice); err != nil {
		return err
	}
	if err := checkPrice(FieldSalePrice, p.SalePrice); err != nil {
		return err
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if len(p.SKU) > 64 {
		return ErrSKUTooLong
	}
	return nil
}

// ProfitPerUnit is sale price minus purchase price.
func (p *Product) ProfitPerUnit() decimal.Decimal {
	return pricing.ProfitPerUnit(p.PurchasePrice, p.SalePrice)
}

// PotentialProfit is the profit if the whole stock sells at the current prices.
func (p *Product) PotentialProfit() decimal.Decimal {
	return pricing.LineProfit(p.PurchasePrice, p.SalePrice, p.Quantity)
}

// InventoryValue is the stock valued at purchase price.
func (p *Product) InventoryValue() decimal.Decimal {
	return pricing.LineCost(p.PurchasePrice, p.Quantity)
}

// Warnings lists the soft policy violations of the current prices.
func (p *Product) Warnings() []Warning {
	if p.SalePrice.LessThan(p.PurchasePrice) {
		return []Warning{WarningBelowCost}
	}
	return nil
}

// AddQuantity returns quantity + delta, or ErrQuantityOverflow when the sum
// leaves the int64 range.
func AddQuantity(quantity, delta int64) (int64, error) {
	if delta > 0 && quantity > math.MaxInt64-delta {
		return 0, ErrQuantityOverflow
	}
	if delta < 0 && quantity < math.MinInt64-delta {
		return 0, ErrQuantityOverflow
	}
	return quantity + delta, nil
}

// InStock reports whether at least one unit is on hand.
func (p *Product) InStock() bool { return p.Quantity > 0 }

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	if p.CategoryID != nil {
		id := *p.CategoryID
		clone.CategoryID = &id
	}
	return &clone
}

// NormalizeSKU trims a SKU; the empty string means no SKU.
func NormalizeSKU(sku string) string {
	return strings.TrimSpace(sku)
}

// PriceError rejects a price that cannot be stored exactly.
type PriceError struct {
	Field Field
	Err   error
}

func (e *PriceError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Err) }

func (e *PriceError) Unwrap() error { return e.Err }

func checkPrice(field Field, price decimal.Decimal) error {
	if err := pricing.CheckAmount(price); err != nil {
		return &PriceError{Field: field, Err: err}
	}
	return nil
}

func validateName(name string) error {
	n := len([]rune(strings.TrimSpace(name)))
	if n < 2 {
		return ErrNameTooShort
	}
	if n > 255 {
		return ErrNameTooLong
	}
	return nil
}
