package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry represents a product saved to the wishlist.
type WishlistEntry struct {
	ID        string          `json:"id" validate:"required"`
	Title     string          `json:"title" validate:"required,max=200"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	DateAdded time.Time       `json:"dateAdded"` // Set by the wishlist on insertion
}
