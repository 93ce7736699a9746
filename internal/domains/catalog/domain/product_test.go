package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storekeeper/internal/shared/pricing"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestNewProductValidation(t *testing.T) {
	tests := []struct {
		name     string
		owner    int64
		title    string
		purchase string
		sale     string
		qty      int64
		wantErr  error
	}{
		{"owner", 0, "Tea", "1", "2", 1, ErrInvalidOwner},
		{"short name", 1, "T", "1", "2", 1, ErrNameTooShort},
		{"blank name", 1, "   ", "1", "2", 1, ErrNameTooShort},
		{"negative purchase", 1, "Tea", "-1", "2", 1, ErrNegativePurchasePrice},
		{"negative sale", 1, "Tea", "1", "-2", 1, ErrNegativeSalePrice},
		{"negative quantity", 1, "Tea", "1", "2", -1, ErrNegativeQuantity},
		{"sub-cent purchase", 1, "Tea", "10.005", "12", 1, pricing.ErrTooPrecise},
		{"sub-cent sale", 1, "Tea", "10", "12.001", 1, pricing.ErrTooPrecise},
		{"oversized sale", 1, "Tea", "1", "10000000000", 1, pricing.ErrOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct(tc.owner, tc.title, dec(tc.purchase), dec(tc.sale), tc.qty)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestProductDerivedValues(t *testing.T) {
	p, err := NewProduct(1, "Green tea", dec("10"), dec("15"), 5)
	require.NoError(t, err)

	assert.True(t, p.ProfitPerUnit().Equal(dec("5")))
	assert.True(t, p.PotentialProfit().Equal(dec("25")))
	assert.True(t, p.InventoryValue().Equal(dec("50")))
	assert.Empty(t, p.Warnings())
}

func TestBelowCostProductIsAllowedWithWarning(t *testing.T) {
	p, err := NewProduct(1, "Clearance", dec("10"), dec("5"), 2)
	require.NoError(t, err)

	assert.Equal(t, []Warning{WarningBelowCost}, p.Warnings())
	assert.True(t, p.ProfitPerUnit().Equal(dec("-5")))
	assert.True(t, p.PotentialProfit().Equal(dec("-10")))
}

func TestEditsApplyTheirOwnValidation(t *testing.T) {
	p, err := NewProduct(1, "Green tea", dec("10"), dec("15"), 5)
	require.NoError(t, err)

	require.ErrorIs(t, NameEdit{Name: "x"}.Apply(p), ErrNameTooShort)
	require.ErrorIs(t, QuantityEdit{Quantity: -1}.Apply(p), ErrNegativeQuantity)
	require.ErrorIs(t, SalePriceEdit{Price: dec("-1")}.Apply(p), ErrNegativeSalePrice)
	var priceErr *PriceError
	require.ErrorAs(t, PurchasePriceEdit{Price: dec("0.125")}.Apply(p), &priceErr)
	assert.Equal(t, FieldPurchasePrice, priceErr.Field)
	assert.True(t, p.PurchasePrice.Equal(dec("10")))
	assert.Equal(t, "Green tea", p.Name)

	catID := int64(9)
	require.NoError(t, CategoryEdit{CategoryID: &catID}.Apply(p))
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, int64(9), *p.CategoryID)
	require.NoError(t, CategoryEdit{}.Apply(p))
	assert.Nil(t, p.CategoryID)

	require.NoError(t, PurchasePriceEdit{Price: dec("20")}.Apply(p))
	assert.True(t, p.ProfitPerUnit().Equal(dec("-5")))
}

func TestParseEdit(t *testing.T) {
	edit, err := ParseEdit(FieldSalePrice, " 12,50 ")
	require.NoError(t, err)
	require.IsType(t, SalePriceEdit{}, edit)
	assert.True(t, edit.(SalePriceEdit).Price.Equal(dec("12.5")))

	edit, err = ParseEdit(FieldQuantity, "7")
	require.NoError(t, err)
	assert.Equal(t, QuantityEdit{Quantity: 7}, edit)

	edit, err = ParseEdit(FieldCategory, "")
	require.NoError(t, err)
	assert.Equal(t, CategoryEdit{}, edit)

	_, err = ParseEdit(FieldPurchasePrice, "-3")
	require.ErrorIs(t, err, ErrInvalidPrice)
	_, err = ParseEdit(FieldPurchasePrice, "10.005")
	require.ErrorIs(t, err, pricing.ErrTooPrecise)
	_, err = ParseEdit(FieldSalePrice, "10000000000")
	require.ErrorIs(t, err, pricing.ErrOutOfRange)
	_, err = ParseEdit(FieldQuantity, "2.5")
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = ParseEdit(FieldName, "a")
	require.ErrorIs(t, err, ErrNameTooShort)
	_, err = ParseEdit("colour", "red")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestCloneCopiesCategoryPointer(t *testing.T) {
	catID := int64(3)
	p := &Product{Name: "Tea", CategoryID: &catID}
	clone := p.Clone()
	*clone.CategoryID = 4
	assert.Equal(t, int64(3), *p.CategoryID)
}

func TestAddQuantityRejectsOverflow(t *testing.T) {
	next, err := AddQuantity(5, -5)
	require.NoError(t, err)
	assert.Zero(t, next)

	_, err = AddQuantity(1, math.MaxInt64)
	require.ErrorIs(t, err, ErrQuantityOverflow)
	_, err = AddQuantity(-1, math.MinInt64)
	require.ErrorIs(t, err, ErrQuantityOverflow)
}
