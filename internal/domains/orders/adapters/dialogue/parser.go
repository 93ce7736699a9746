// Package dialogue turns conversation text into basket commands and renders
// basket state back as text.
package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// splitList accepts "1, 3", "1 3" and "1;3".
func splitList(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
}

// ParsePositions reads 1-based offer positions such as "1, 3".
func ParsePositions(text string) ([]int, error) {
	parts := splitList(text)
	if len(parts) == 0 {
		return nil, &apperrors.SelectionError{Reason: "enter product numbers separated by commas"}
	}
	positions := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, &apperrors.SelectionError{Reason: fmt.Sprintf("%q is not a product number", part)}
		}
		positions = append(positions, n)
	}
	return positions, nil
}

// ParseQuantities reads one quantity per selected product such as "2, 5".
func ParseQuantities(text string) ([]int64, error) {
	parts := splitList(text)
	if len(parts) == 0 {
		return nil, apperrors.Invalid("quantities", "enter quantities separated by commas")
	}
	quantities := make([]int64, 0, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, apperrors.Invalid(fmt.Sprintf("quantities[%d]", i), "%q is not a whole number", part)
		}
		quantities = append(quantities, n)
	}
	return quantities, nil
}

// FormatOffer lists the offer as numbered lines for the selection prompt.
func FormatOffer(basket *domain.Basket) string {
	if len(basket.Offer) == 0 {
		return "No products are in stock."
	}
	var b strings.Builder
	for i, entry := range basket.Offer {
		fmt.Fprintf(&b, "%d. %s - %s (%d in stock)\n", i+1, entry.Name, entry.SalePrice.StringFixed(2), entry.Available)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSummary renders the confirmation summary of a basket with quantities.
func FormatSummary(basket *domain.Basket) string {
	lines, amount, profit := basket.Preview()
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "%s x%d = %s\n", line.Name, line.Quantity, line.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\nProfit: %s", amount.StringFixed(2), profit.StringFixed(2))
	return b.String()
}
