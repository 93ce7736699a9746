package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/shared/pricing"
)

// Field names one editable product attribute.
type Field string

const (
	FieldName          Field = "name"
	FieldQuantity      Field = "quantity"
	FieldPurchasePrice Field = "purchasePrice"
	FieldSalePrice     Field = "salePrice"
	FieldCategory      Field = "categoryId"
	FieldDescription   Field = "description"
	FieldSKU           Field = "sku"
)

// Edit is one typed change to a product. Each variant validates its own value.
type Edit interface {
	Field() Field
	Apply(p *Product) error
}

type NameEdit struct{ Name string }

func (e NameEdit) Field() Field { return FieldName }

func (e NameEdit) Apply(p *Product) error {
	name := strings.TrimSpace(e.Name)
	if err := validateName(name); err != nil {
		return err
	}
	p.Name = name
	return nil
}

type QuantityEdit struct{ Quantity int64 }

func (e QuantityEdit) Field() Field { return FieldQuantity }

func (e QuantityEdit) Apply(p *Product) error {
	if e.Quantity < 0 {
		return ErrNegativeQuantity
	}
	p.Quantity = e.Quantity
	return nil
}

type PurchasePriceEdit struct{ Price decimal.Decimal }

func (e PurchasePriceEdit) Field() Field { return FieldPurchasePrice }

func (e PurchasePriceEdit) Apply(p *Product) error {
	if e.Price.IsNegative() {
		return ErrNegativePurchasePrice
	}
	if err := checkPrice(FieldPurchasePrice, e.Price); err != nil {
		return err
	}
	p.PurchasePrice = e.Price
	return nil
}

type SalePriceEdit struct{ Price decimal.Decimal }

func (e SalePriceEdit) Field() Field { return FieldSalePrice }

func (e SalePriceEdit) Apply(p *Product) error {
	if e.Price.IsNegative() {
		return ErrNegativeSalePrice
	}
	if err := checkPrice(FieldSalePrice, e.Price); err != nil {
		return err
	}
	p.SalePrice = e.Price
	return nil
}

// CategoryEdit moves the product to another category, or out of any when CategoryID is nil.
// Ownership of the target category is checked by the application layer.
type CategoryEdit struct{ CategoryID *int64 }

func (e CategoryEdit) Field() Field { return FieldCategory }

func (e CategoryEdit) Apply(p *Product) error {
	if e.CategoryID == nil {
		p.CategoryID = nil
		return nil
	}
	if *e.CategoryID <= 0 {
		return ErrInvalidCategoryID
	}
	id := *e.CategoryID
	p.CategoryID = &id
	return nil
}

type DescriptionEdit struct{ Description string }

func (e DescriptionEdit) Field() Field { return FieldDescription }

func (e DescriptionEdit) Apply(p *Product) error {
	p.Description = strings.TrimSpace(e.Description)
	return nil
}

// SKUEdit sets or clears the SKU. Uniqueness is checked by the repository.
type SKUEdit struct{ SKU string }

func (e SKUEdit) Field() Field { return FieldSKU }

func (e SKUEdit) Apply(p *Product) error {
	sku := NormalizeSKU(e.SKU)
	if len(sku) > 64 {
		return ErrSKUTooLong
	}
	p.SKU = sku
	return nil
}

// ParseEdit turns free-text operator input for a field into a typed edit.
func ParseEdit(field Field, raw string) (Edit, error) {
	raw = strings.TrimSpace(raw)
	switch field {
	case FieldName:
		if err := validateName(raw); err != nil {
			return nil, err
		}
		return NameEdit{Name: raw}, nil
	case FieldQuantity:
		qty, err := ParseQuantity(raw)
		if err != nil {
			return nil, err
		}
		return QuantityEdit{Quantity: qty}, nil
	case FieldPurchasePrice:
		price, err := ParsePrice(raw)
		if err != nil {
			return nil, err
		}
		return PurchasePriceEdit{Price: price}, nil
	case FieldSalePrice:
		price, err := ParsePrice(raw)
		if err != nil {
			return nil, err
		}
		return SalePriceEdit{Price: price}, nil
	case FieldCategory:
		if raw == "" || raw == "-" {
			return CategoryEdit{}, nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, ErrInvalidCategoryID
		}
		return CategoryEdit{CategoryID: &id}, nil
	case FieldDescription:
		return DescriptionEdit{Description: raw}, nil
	case FieldSKU:
		return SKUEdit{SKU: raw}, nil
	default:
		return nil, ErrUnknownField
	}
}

// ParsePrice accepts a non-negative decimal with at most two places, with
// either "." or "," as separator.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	if err := pricing.CheckAmount(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// ParseQuantity accepts a non-negative integer.
func ParseQuantity(raw string) (int64, error) {
	qty, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || qty < 0 {
		return 0, ErrInvalidQuantity
	}
	return qty, nil
}
