// Package cart owns the checkout cart: ordered line items keyed by
// (product, variant), quantities bounded by stock ceilings, and the pure
// derivation of subtotal, tax, discount and total. All mutations are
// synchronous; the engine is driven one user action at a time.
package cart

import (
	"fmt"
	"math"
	"strings"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// LineKey identifies a cart line. VariantID is empty for a plain product.
type LineKey struct {
	ProductID string
	VariantID string
}

func (k LineKey) String() string {
	if k.VariantID == "" {
		return k.ProductID
	}
	return k.ProductID + "_" + k.VariantID
}

// ParseLineKey parses the wire form produced by LineKey.String.
func ParseLineKey(s string) (LineKey, error) {
	if s == "" {
		return LineKey{}, fmt.Errorf("empty cart line key")
	}
	product, variant, _ := strings.Cut(s, "_")
	return LineKey{ProductID: product, VariantID: variant}, nil
}

// Line is a denormalized snapshot of one sellable item. Stock is the ceiling
// copied from the catalog at add time. Total is always Price * Quantity.
type Line struct {
	Key      LineKey `json:"-"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
	Stock    int     `json:"stock"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image,omitempty"`
}

// Totals is the derived pricing of the whole cart. Total can go negative when
// the discount outweighs subtotal plus tax; that is surfaced, never clamped.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	TaxPercent      float64 `json:"taxPercent"`
	TaxAmount       float64 `json:"taxAmount"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	Total           float64 `json:"total"`
}

// Engine maintains the cart invariants. Not safe for concurrent use; callers
// serialize access (one checkout session, one action at a time).
type Engine struct {
	lines           []Line
	taxPercent      float64
	discountPercent float64

	// OnAdd, when set, is called after every successful AddOrIncrement.
	OnAdd func(Line)
}

func NewEngine() *Engine {
	return &Engine{}
}

// AddOrIncrement adds the product (or product+variant) to the cart, merging
// into an existing line by key. An increment past the stock ceiling is
// rejected with a CapacityError and no mutation.
func (e *Engine) AddOrIncrement(p domain.Product, v *domain.Variant) error {
	key := LineKey{ProductID: p.ID}
	name := p.Name
	price := p.Price
	stock := p.Stock
	if v != nil {
		key.VariantID = v.ID
		name = fmt.Sprintf("%s (%s)", p.Name, v.Name)
		price = v.Price
		stock = v.Stock
	}

	if i := e.index(key); i >= 0 {
		line := &e.lines[i]
		if line.Quantity >= line.Stock {
			return &CapacityError{Stock: line.Stock, Unit: line.Unit}
		}
		line.Quantity++
		line.Total = line.Price * float64(line.Quantity)
		if e.OnAdd != nil {
			e.OnAdd(*line)
		}
		return nil
	}

	if stock < 1 {
		return &CapacityError{Stock: stock, Unit: p.Unit}
	}
	line := Line{
		Key:      key,
		Name:     name,
		Price:    price,
		Quantity: 1,
		Total:    price,
		Stock:    stock,
		Unit:     p.Unit,
		Image:    p.Image,
	}
	e.lines = append(e.lines, line)
	if e.OnAdd != nil {
		e.OnAdd(line)
	}
	return nil
}

// SetQuantity updates a line's quantity. A quantity below one removes the
// line. A quantity above the stock ceiling fails with a CapacityError and
// leaves the cart unchanged.
func (e *Engine) SetQuantity(key LineKey, quantity int) error {
	if quantity < 1 {
		e.Remove(key)
		return nil
	}
	i := e.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	line := &e.lines[i]
	if quantity > line.Stock {
		return &CapacityError{Stock: line.Stock, Unit: line.Unit}
	}
	line.Quantity = quantity
	line.Total = line.Price * float64(quantity)
	return nil
}

// Remove deletes a line. No-op when the key is absent.
func (e *Engine) Remove(key LineKey) {
	if i := e.index(key); i >= 0 {
		e.lines = append(e.lines[:i], e.lines[i+1:]...)
	}
}

// Clear empties all lines. Percentages are kept; callers reset them when a
// whole checkout completes (see Reset).
func (e *Engine) Clear() {
	e.lines = nil
}

// Reset empties the cart and zeroes tax and discount. Used after a
// successful sale.
func (e *Engine) Reset() {
	e.lines = nil
	e.taxPercent = 0
	e.discountPercent = 0
}

// SetTaxPercent clamps the percentage to [0, 100].
func (e *Engine) SetTaxPercent(p float64) {
	e.taxPercent = clampPercent(p)
}

func (e *Engine) SetDiscountPercent(p float64) {
	e.discountPercent = clampPercent(p)
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Totals derives all pricing from the current lines and percentages; nothing
// is cached.
func (e *Engine) Totals() Totals {
	var subtotal float64
	for _, l := range e.lines {
		subtotal += l.Total
	}
	tax := math.Round(subtotal * e.taxPercent / 100)
	discount := math.Round(subtotal * e.discountPercent / 100)
	return Totals{
		Subtotal:        subtotal,
		TaxPercent:      e.taxPercent,
		TaxAmount:       tax,
		DiscountPercent: e.discountPercent,
		DiscountAmount:  discount,
		Total:           subtotal + tax - discount,
	}
}

// Lines returns a copy of the lines in insertion order.
func (e *Engine) Lines() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *Engine) Len() int {
	return len(e.lines)
}

func (e *Engine) IsEmpty() bool {
	return len(e.lines) == 0
}

// TotalQuantity is the unit count across all lines (the cart badge).
func (e *Engine) TotalQuantity() int {
	var n int
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

func (e *Engine) index(key LineKey) int {
	for i, l := range e.lines {
		if l.Key == key {
			return i
		}
	}
	return -1
}
