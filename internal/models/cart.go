package models

import "github.com/shopspring/decimal"

// CartLine represents a single product line in the cart.
type CartLine struct {
	ID       string          `json:"id" validate:"required"`
	Title    string          `json:"title" validate:"required,max=200"`
	Price    decimal.Decimal `json:"price"` // Unit price, validated as non-negative by the cart service
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price times quantity for the line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotals is the aggregated view of the cart. It is derived on every read and never stored.
type CartTotals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}
