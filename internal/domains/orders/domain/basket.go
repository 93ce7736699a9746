package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
	"github.com/Apurer/storekeeper/internal/shared/pricing"
)

// State is a step of the basket build.
type State string

const (
	StateEmpty             State = "empty"
	StateProductsSelected  State = "products_selected"
	StateQuantitiesEntered State = "quantities_entered"
	StateConfirmed         State = "confirmed"
	StateCancelled         State = "cancelled"
)

var (
	ErrInvalidTransition = errors.New("basket transition not allowed")
	ErrEmptyConversation = errors.New("conversation id is required")
	ErrLongConversation  = fmt.Errorf("conversation id must be at most %d characters", MaxConversationIDLength)
)

// MaxConversationIDLength matches the width of the stored basket key.
const MaxConversationIDLength = 128

// Key identifies one basket: an owner and one of their conversations.
type Key struct {
	OwnerID        int64
	ConversationID string
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.OwnerID, k.ConversationID)
}

// Validate checks both parts of the key.
func (k Key) Validate() error {
	if k.OwnerID <= 0 {
		return apperrors.Invalid("ownerId", "owner id must be greater than zero")
	}
	if strings.TrimSpace(k.ConversationID) == "" {
		return apperrors.NewValidation("conversationId", ErrEmptyConversation)
	}
	if utf8.RuneCountInString(k.ConversationID) > MaxConversationIDLength {
		return apperrors.NewValidation("conversationId", ErrLongConversation)
	}
	return nil
}

// OfferEntry is a product that was in stock when the basket was opened.
type OfferEntry struct {
	ProductID     int64
	Name          string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Available     int64
}

// PreviewLine is an uncommitted line priced at the offer snapshot.
type PreviewLine struct {
	ProductID int64
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
	Profit    decimal.Decimal
}

// Basket is an in-progress order built over several conversation turns.
type Basket struct {
	Key        Key
	State      State
	Offer      []OfferEntry
	Selected   []int64
	Quantities []int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

// NewBasket opens an empty basket over the given in-stock offer.
func NewBasket(key Key, offer []OfferEntry, now time.Time, ttl time.Duration) (*Basket, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Basket{
		Key:       key,
		State:     StateEmpty,
		Offer:     append([]OfferEntry(nil), offer...),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// SelectPositions chooses products by their 1-based position in the offer.
// Repeated positions are ignored. Any earlier quantities are discarded.
func (b *Basket) SelectPositions(positions []int) error {
	if err := b.requireState("select products", StateEmpty, StateProductsSelected, StateQuantitiesEntered); err != nil {
		return err
	}
	if len(b.Offer) == 0 {
		return &apperrors.SelectionError{Reason: "no products are in stock"}
	}
	if len(positions) == 0 {
		return &apperrors.SelectionError{Reason: "select at least one product"}
	}
	seen := map[int]bool{}
	selected := make([]int64, 0, len(positions))
	for _, pos := range positions {
		if pos < 1 || pos > len(b.Offer) {
			return &apperrors.SelectionError{Reason: fmt.Sprintf("position %d is outside 1..%d", pos, len(b.Offer))}
		}
		if seen[pos] {
			continue
		}
		seen[pos] = true
		selected = append(selected, b.Offer[pos-1].ProductID)
	}
	b.Selected = selected
	b.Quantities = nil
	b.State = StateProductsSelected
	return nil
}

// SelectProducts chooses products by id; every id must be part of the offer.
func (b *Basket) SelectProducts(productIDs []int64) error {
	if err := b.requireState("select products", StateEmpty, StateProductsSelected, StateQuantitiesEntered); err != nil {
		return err
	}
	positions := make([]int, 0, len(productIDs))
	for _, id := range productIDs {
		pos := b.positionOf(id)
		if pos == 0 {
			return &apperrors.SelectionError{Reason: fmt.Sprintf("product %d is not available", id)}
		}
		positions = append(positions, pos)
	}
	return b.SelectPositions(positions)
}

// EnterQuantities pairs one quantity with each selected product, in order, and
// checks them against current stock. Nothing changes when a check fails.
func (b *Basket) EnterQuantities(quantities []int64, stock map[int64]StockLevel) error {
	if err := b.CanEnterQuantities(); err != nil {
		return err
	}
	if len(quantities) != len(b.Selected) {
		return apperrors.Invalid("quantities", "expected %d quantities, got %d", len(b.Selected), len(quantities))
	}
	for i, qty := range quantities {
		id := b.Selected[i]
		field := fmt.Sprintf("quantities[%d]", i)
		name := b.ProductName(id)
		if qty <= 0 {
			return apperrors.Invalid(field, "quantity for %q must be greater than zero", name)
		}
		available := int64(0)
		if level, ok := stock[id]; ok {
			available = level.Available
		}
		if qty > available {
			return apperrors.NewValidation(field, apperrors.NewInsufficientStock(apperrors.Shortage{
				ProductID: id, Name: name, Requested: qty, Available: available,
			}))
		}
	}
	b.Quantities = append([]int64(nil), quantities...)
	b.State = StateQuantitiesEntered
	return nil
}

// Lines returns the basket as order lines. It is only meaningful once quantities are entered.
func (b *Basket) Lines() []Line {
	lines := make([]Line, 0, len(b.Selected))
	for i, id := range b.Selected {
		var qty int64
		if i < len(b.Quantities) {
			qty = b.Quantities[i]
		}
		lines = append(lines, Line{ProductID: id, Quantity: qty})
	}
	return lines
}

// Preview prices the basket at the offer snapshot for the confirmation summary.
func (b *Basket) Preview() ([]PreviewLine, decimal.Decimal, decimal.Decimal) {
	lines := make([]PreviewLine, 0, len(b.Selected))
	amount, profit := decimal.Zero, decimal.Zero
	for _, line := range b.Lines() {
		entry := b.entryOf(line.ProductID)
		pl := PreviewLine{
			ProductID: line.ProductID,
			Name:      entry.Name,
			Quantity:  line.Quantity,
			UnitPrice: entry.SalePrice,
			Amount:    pricing.LineAmount(entry.SalePrice, line.Quantity),
			Profit:    pricing.LineProfit(entry.PurchasePrice, entry.SalePrice, line.Quantity),
		}
		amount = amount.Add(pl.Amount)
		profit = profit.Add(pl.Profit)
		lines = append(lines, pl)
	}
	return lines, amount, profit
}

// CanEnterQuantities checks products were selected.
func (b *Basket) CanEnterQuantities() error {
	return b.requireState("enter quantities", StateProductsSelected, StateQuantitiesEntered)
}

// CanConfirm checks the basket is ready to commit.
func (b *Basket) CanConfirm() error {
	return b.requireState("confirm", StateQuantitiesEntered)
}

// MarkConfirmed records a successful commit.
func (b *Basket) MarkConfirmed() error {
	if err := b.CanConfirm(); err != nil {
		return err
	}
	b.State = StateConfirmed
	return nil
}

// Cancel discards the basket contents.
func (b *Basket) Cancel() error {
	if err := b.requireState("cancel", StateEmpty, StateProductsSelected, StateQuantitiesEntered); err != nil {
		return err
	}
	b.Selected = nil
	b.Quantities = nil
	b.State = StateCancelled
	return nil
}

// Touch refreshes the expiry after a transition.
func (b *Basket) Touch(now time.Time, ttl time.Duration) {
	b.UpdatedAt = now.UTC()
	b.ExpiresAt = b.UpdatedAt.Add(ttl)
}

// Expired reports whether the basket outlived its TTL.
func (b *Basket) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}

// Terminal reports whether the basket reached Confirmed or Cancelled.
func (b *Basket) Terminal() bool {
	return b.State == StateConfirmed || b.State == StateCancelled
}

// Clone returns a deep copy.
func (b *Basket) Clone() *Basket {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Offer = append([]OfferEntry(nil), b.Offer...)
	clone.Selected = append([]int64(nil), b.Selected...)
	clone.Quantities = append([]int64(nil), b.Quantities...)
	return &clone
}

func (b *Basket) requireState(action string, allowed ...State) error {
	for _, s := range allowed {
		if b.State == s {
			return nil
		}
	}
	return apperrors.NewValidation("basket", fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, b.State))
}

func (b *Basket) positionOf(productID int64) int {
	for i, entry := range b.Offer {
		if entry.ProductID == productID {
			return i + 1
		}
	}
	return 0
}

func (b *Basket) entryOf(productID int64) OfferEntry {
	if pos := b.positionOf(productID); pos > 0 {
		return b.Offer[pos-1]
	}
	return OfferEntry{ProductID: productID}
}

// ProductName returns the offered name of a product, or "" if it is not offered.
func (b *Basket) ProductName(productID int64) string {
	return b.entryOf(productID).Name
}
