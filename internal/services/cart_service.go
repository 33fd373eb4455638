package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShipping          = decimal.RequireFromString("9.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// cartSchema v0 is the bare array written by earlier storefront builds.
var cartSchema = repositories.Schema{
	Version: 1,
	Migrate: func(_ int, items json.RawMessage) (json.RawMessage, error) {
		return rewriteLegacy(items, nil)
	},
}

// CartService owns the cart lines.
type CartService struct {
	mu        sync.Mutex
	lines     []models.CartLine
	snapshots *repositories.SnapshotStore
	events    emitter
	opts      Options
	validate  *validator.Validate
}

// NewCartService creates a CartService and restores the last persisted cart.
func NewCartService(opts Options) *CartService {
	opts = opts.withDefaults()
	s := &CartService{
		snapshots: opts.Snapshots,
		events:    emitter{collection: CartKey, sink: opts.Sink, clock: opts.Clock},
		opts:      opts,
		validate:  validator.New(),
	}

	var stored []models.CartLine
	if opts.Snapshots.Load(CartKey, cartSchema, &stored) {
		s.lines = s.sanitizeLines(stored)
	}
	return s
}

// sanitizeLines drops lines that would be rejected by AddLine and lines below
// quantity 1, then merges duplicate ids, so a restored cart honours the line invariants.
func (s *CartService) sanitizeLines(stored []models.CartLine) []models.CartLine {
	lines := make([]models.CartLine, 0, len(stored))
	index := make(map[string]int, len(stored))
	for _, l := range stored {
		if l.Quantity < 1 || l.Price.IsNegative() || s.validate.Struct(l) != nil {
			continue
		}
		if i, ok := index[l.ID]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.ID] = len(lines)
		lines = append(lines, l)
	}
	return lines
}

// Lines returns a copy of the cart lines in insertion order.
func (s *CartService) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLine{}, s.lines...)
}

// Line returns the line with the given id.
func (s *CartService) Line(id string) (models.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.lines[i], true
	}
	return models.CartLine{}, false
}

// Totals derives subtotal, shipping, tax and total from the current lines.
func (s *CartService) Totals() models.CartTotals {
	return ComputeTotals(s.Lines())
}

// AddLine increments the quantity of an existing line or inserts a new line with quantity 1.
func (s *CartService) AddLine(line models.CartLine) error {
	if err := s.validate.Struct(line); err != nil {
		return err
	}
	if line.Price.IsNegative() {
		return fmt.Errorf("%w: price of %q must not be negative", ErrInvalidItem, line.ID)
	}

	s.mu.Lock()
	if i := s.indexOf(line.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		line.Quantity = 1
		s.lines = append(s.lines, line)
	}
	s.persistLocked()
	s.mu.Unlock()

	s.events.success("add", fmt.Sprintf("%s added to cart", line.Title))
	return nil
}

// RemoveLine deletes the line with the given id. Removing an absent id is a no-op.
func (s *CartService) RemoveLine(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
		s.persistLocked()
	}
	s.mu.Unlock()

	if i < 0 {
		s.events.noop("remove")
		if s.opts.SuppressMissingRemovals {
			return false
		}
	}
	s.events.success("remove", "Item removed from cart")
	return i >= 0
}

// IncrementQuantity adds one to the quantity of the line.
func (s *CartService) IncrementQuantity(id string) bool {
	return s.adjust(id, 1)
}

// DecrementQuantity subtracts one from the quantity of the line. A line at quantity 1 is left unchanged.
func (s *CartService) DecrementQuantity(id string) bool {
	return s.adjust(id, -1)
}

func (s *CartService) adjust(id string, delta int) bool {
	action := "increment"
	verb := "increased"
	if delta < 0 {
		action = "decrement"
		verb = "decreased"
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 || s.lines[i].Quantity+delta < 1 {
		s.mu.Unlock()
		s.events.noop(action)
		return false
	}
	s.lines[i].Quantity += delta
	title := s.lines[i].Title
	s.persistLocked()
	s.mu.Unlock()

	s.events.success(action, fmt.Sprintf("%s quantity %s", title, verb))
	return true
}

// Clear empties the cart.
func (s *CartService) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.snapshots.Delete(CartKey)
	s.mu.Unlock()

	s.events.success("clear", "Cart cleared")
}

// drainIfAny empties a non-empty cart and returns the lines it held, in one step.
// The caller announces the clear once the drained lines are committed elsewhere.
func (s *CartService) drainIfAny() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.lines
	if len(drained) == 0 {
		return nil
	}
	s.lines = nil
	s.persistLocked()
	return drained
}

func (s *CartService) announceCleared() {
	s.events.success("clear", "Cart cleared")
}

// restore puts drained lines back in front of anything added since.
func (s *CartService) restore(lines []models.CartLine) {
	s.mu.Lock()
	s.lines = s.sanitizeLines(append(append([]models.CartLine{}, lines...), s.lines...))
	s.persistLocked()
	s.mu.Unlock()
}

func (s *CartService) indexOf(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CartService) persistLocked() {
	lines := s.lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	s.snapshots.Save(CartKey, cartSchema, lines)
}

// ComputeTotals derives the cart totals: shipping is free above 100, tax is 8% of the subtotal.
// Subtotal is exact; tax and total are rounded to cents.
func ComputeTotals(lines []models.CartLine) models.CartTotals {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
		count += l.Quantity
	}

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)

	return models.CartTotals{
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax.Round(2),
		Total:     subtotal.Add(shipping).Add(tax).Round(2),
	}
}
