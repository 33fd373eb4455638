package query

import (
	"fmt"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Default page sizes of the storefront views.
const (
	CartPageSize     = 5
	WishlistPageSize = 6
	OrderPageSize    = 10
	ProductPageSize  = 8
)

func byPrice(a, b decimal.Decimal) int { return a.Cmp(b) }

// CartSpec searches cart lines by title. Without a sort key lines keep insertion order.
func CartSpec() Spec[models.CartLine] {
	return Spec[models.CartLine]{
		Fields: func(l models.CartLine) []string { return []string{l.Title} },
		Sorts: map[string]Comparator[models.CartLine]{
			"price-asc":  func(_ *Collation, a, b models.CartLine) int { return byPrice(a.Price, b.Price) },
			"price-desc": func(_ *Collation, a, b models.CartLine) int { return byPrice(b.Price, a.Price) },
			"title-asc":  func(c *Collation, a, b models.CartLine) int { return c.Compare(a.Title, b.Title) },
			"title-desc": func(c *Collation, a, b models.CartLine) int { return c.Compare(b.Title, a.Title) },
		},
	}
}

// WishlistSpec searches entries by title, newest first by default.
func WishlistSpec() Spec[models.WishlistEntry] {
	return Spec[models.WishlistEntry]{
		Fields: func(e models.WishlistEntry) []string { return []string{e.Title} },
		Sorts: map[string]Comparator[models.WishlistEntry]{
			"name-asc":   func(c *Collation, a, b models.WishlistEntry) int { return c.Compare(a.Title, b.Title) },
			"name-desc":  func(c *Collation, a, b models.WishlistEntry) int { return c.Compare(b.Title, a.Title) },
			"price-asc":  func(_ *Collation, a, b models.WishlistEntry) int { return byPrice(a.Price, b.Price) },
			"price-desc": func(_ *Collation, a, b models.WishlistEntry) int { return byPrice(b.Price, a.Price) },
			"date-added": func(_ *Collation, a, b models.WishlistEntry) int { return b.DateAdded.Compare(a.DateAdded) },
		},
		DefaultSort: "date-added",
	}
}

// StatusAll disables the order status filter.
const StatusAll = "all"

// OrderSpec searches orders by title and tracking number, newest first by
// default. status narrows the view to one status; "" and "all" keep every order.
func OrderSpec(status string) (Spec[models.Order], error) {
	spec := Spec[models.Order]{
		Fields: func(o models.Order) []string { return []string{o.Title, o.TrackingNumber} },
		Sorts: map[string]Comparator[models.Order]{
			"newest":     func(_ *Collation, a, b models.Order) int { return b.OrderDate.Compare(a.OrderDate) },
			"oldest":     func(_ *Collation, a, b models.Order) int { return a.OrderDate.Compare(b.OrderDate) },
			"price-high": func(_ *Collation, a, b models.Order) int { return byPrice(b.Amount(), a.Amount()) },
			"price-low":  func(_ *Collation, a, b models.Order) int { return byPrice(a.Amount(), b.Amount()) },
		},
		DefaultSort: "newest",
	}
	if status == "" || status == StatusAll {
		return spec, nil
	}
	want := models.OrderStatus(status)
	if !want.Valid() {
		return spec, fmt.Errorf("unknown order status %q", status)
	}
	spec.Where = func(o models.Order) bool { return o.Status == want }
	return spec, nil
}

// ProductSpec searches catalog products by title, description and category
// name. A categoryID of 0 keeps every category.
func ProductSpec(categoryID int) Spec[models.Product] {
	spec := Spec[models.Product]{
		Fields: func(p models.Product) []string { return []string{p.Title, p.Description, p.Category.Name} },
		Sorts: map[string]Comparator[models.Product]{
			"price-asc":  func(_ *Collation, a, b models.Product) int { return byPrice(a.Price, b.Price) },
			"price-desc": func(_ *Collation, a, b models.Product) int { return byPrice(b.Price, a.Price) },
			"title-asc":  func(c *Collation, a, b models.Product) int { return c.Compare(a.Title, b.Title) },
			"title-desc": func(c *Collation, a, b models.Product) int { return c.Compare(b.Title, a.Title) },
		},
	}
	if categoryID != 0 {
		spec.Where = func(p models.Product) bool { return p.Category.ID == categoryID }
	}
	return spec
}
