package mapper

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/domains/catalog/domain"
	"github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
	"github.com/Apurer/storekeeper/internal/shared/projection"
)

// CategoryRequest is the body of POST /categories.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryPatch is the body of PATCH /categories/:categoryId.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Category is the HTTP representation of a category.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// ProductRequest is the body of POST /products. Prices accept JSON strings or numbers.
type ProductRequest struct {
	Name          string          `json:"name"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	Quantity      int64           `json:"quantity"`
	CategoryID    *int64          `json:"categoryId,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ProductPatch is the body of PATCH /products/:productId: field name to new value.
// Values are parsed like operator text input, and an empty or null categoryId
// removes the product from its category.
type ProductPatch map[string]json.RawMessage

// AdjustmentRequest is the body of POST /products/:productId/adjustments.
type AdjustmentRequest struct {
	Delta int64 `json:"delta"`
}

// Adjustment is the result of a stock adjustment.
type Adjustment struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Product is the HTTP representation of a product.
type Product struct {
	ID              int64    `json:"id"`
	CategoryID      *int64   `json:"categoryId"`
	Name            string   `json:"name"`
	SKU             string   `json:"sku,omitempty"`
	Description     string   `json:"description,omitempty"`
	PurchasePrice   string   `json:"purchasePrice"`
	SalePrice       string   `json:"salePrice"`
	Quantity        int64    `json:"quantity"`
	ProfitPerUnit   string   `json:"profitPerUnit"`
	PotentialProfit string   `json:"potentialProfit"`
	Warnings        []string `json:"warnings,omitempty"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

var editOrder = map[domain.Field]int{
	domain.FieldName:          0,
	domain.FieldSKU:           1,
	domain.FieldDescription:   2,
	domain.FieldCategory:      3,
	domain.FieldPurchasePrice: 4,
	domain.FieldSalePrice:     5,
	domain.FieldQuantity:      6,
}

func ToCreateCategoryInput(req CategoryRequest) ports.CreateCategoryInput {
	return ports.CreateCategoryInput{Name: req.Name, Description: req.Description}
}

func ToUpdateCategoryInput(req CategoryPatch) ports.UpdateCategoryInput {
	return ports.UpdateCategoryInput{Name: req.Name, Description: req.Description}
}

func ToCreateProductInput(req ProductRequest) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:          req.Name,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Quantity:      req.Quantity,
		CategoryID:    req.CategoryID,
		SKU:           req.SKU,
		Description:   req.Description,
	}
}

// ToEdits turns a patch into typed edits in a stable order.
func ToEdits(patch ProductPatch) ([]domain.Edit, error) {
	if len(patch) == 0 {
		return nil, apperrors.Invalid("body", "at least one field is required")
	}
	fields := make([]domain.Field, 0, len(patch))
	for key := range patch {
		field := domain.Field(key)
		if _, ok := editOrder[field]; !ok {
			return nil, apperrors.NewValidation(key, domain.ErrUnknownField)
		}
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return editOrder[fields[i]] < editOrder[fields[j]] })

	edits := make([]domain.Edit, 0, len(fields))
	for _, field := range fields {
		edit, err := domain.ParseEdit(field, rawText(patch[string(field)]))
		if err != nil {
			return nil, apperrors.NewValidation(string(field), err)
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func FromCategory(c *domain.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   projection.Timestamp(c.CreatedAt),
	}
}

func FromCategories(categories []*domain.Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, FromCategory(c))
	}
	return out
}

func FromProduct(p *domain.Product) Product {
	out := Product{
		ID:              p.ID,
		CategoryID:      p.CategoryID,
		Name:            p.Name,
		SKU:             p.SKU,
		Description:     p.Description,
		PurchasePrice:   projection.Money(p.PurchasePrice),
		SalePrice:       projection.Money(p.SalePrice),
		Quantity:        p.Quantity,
		ProfitPerUnit:   projection.Money(p.ProfitPerUnit()),
		PotentialProfit: projection.Money(p.PotentialProfit()),
		CreatedAt:       projection.Timestamp(p.CreatedAt),
		UpdatedAt:       projection.Timestamp(p.UpdatedAt),
	}
	for _, w := range p.Warnings() {
		out.Warnings = append(out.Warnings, string(w))
	}
	return out
}

func FromProducts(products []*domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}
