// Package query derives list views from collection snapshots: text filtering,
// stable sorting by a fixed set of keys, and pagination. Every function is
// pure; inputs are never modified.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrUnknownSortKey  = errors.New("unknown sort key")
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// Params are the consumer-supplied view parameters.
type Params struct {
	Search   string `query:"q"`
	Sort     string `query:"sort"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

// WithDefaults fills in page 1 and the view's page size when the consumer left them unset.
func (p Params) WithDefaults(pageSize int) Params {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = pageSize
	}
	return p
}

// Page is one page of a derived view.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Collation compares strings the way a shopper expects titles to be ordered.
// It is not safe for concurrent use.
type Collation struct {
	collator *collate.Collator
}

func newCollation() *Collation {
	return &Collation{collator: collate.New(language.English)}
}

// Compare returns -1, 0 or 1.
func (c *Collation) Compare(a, b string) int {
	return c.collator.CompareString(a, b)
}

// Comparator orders two items. It must be a strict weak ordering.
type Comparator[T any] func(c *Collation, a, b T) int

// Spec describes how a collection is searched and sorted.
type Spec[T any] struct {
	// Fields returns the text searched by Params.Search.
	Fields func(T) []string
	// Where is an optional extra predicate applied before the search.
	Where func(T) bool
	// Sorts is the fixed set of sort keys accepted by the view.
	Sorts map[string]Comparator[T]
	// DefaultSort is used for an empty sort key. Empty means input order.
	DefaultSort string
}

// SortKeys returns the accepted sort keys in lexical order.
func (s Spec[T]) SortKeys() []string {
	keys := make([]string, 0, len(s.Sorts))
	for k := range s.Sorts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Run filters, sorts and paginates items.
func Run[T any](items []T, spec Spec[T], p Params) (Page[T], error) {
	if p.PageSize <= 0 {
		return Page[T]{}, ErrInvalidPageSize
	}
	filtered := Filter(items, spec, p.Search)
	if err := Sort(filtered, spec, p.Sort); err != nil {
		return Page[T]{}, err
	}
	return Paginate(filtered, p.Page, p.PageSize), nil
}

// Filter returns the items accepted by spec.Where whose fields contain term.
// The result is always a new slice.
func Filter[T any](items []T, spec Spec[T], term string) []T {
	folder := cases.Fold()
	needle := normalize(folder, term)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.Where != nil && !spec.Where(item) {
			continue
		}
		if needle != "" && !matchesAny(folder, needle, spec.Fields, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesAny[T any](folder cases.Caser, needle string, fields func(T) []string, item T) bool {
	if fields == nil {
		return false
	}
	for _, f := range fields(item) {
		if strings.Contains(normalize(folder, f), needle) {
			return true
		}
	}
	return false
}

// Sort orders items in place by the comparator registered under key.
// Items with equal keys keep their relative order.
func Sort[T any](items []T, spec Spec[T], key string) error {
	if key == "" {
		key = spec.DefaultSort
	}
	if key == "" {
		return nil
	}
	cmp, ok := spec.Sorts[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	col := newCollation()
	slices.SortStableFunc(items, func(a, b T) int { return cmp(col, a, b) })
	return nil
}

// Paginate returns page (1-based) of items. A page outside [1, TotalPages]
// yields an empty page rather than an error.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	total := len(items)
	result := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: total / pageSize,
	}
	if total%pageSize != 0 {
		result.TotalPages++
	}
	if page < 1 || page > result.TotalPages {
		return result
	}
	// page <= TotalPages keeps start below total, so neither bound overflows.
	start := (page - 1) * pageSize
	end := start + min(pageSize, total-start)
	result.Items = append(result.Items, items[start:end]...)
	return result
}

// CountBy aggregates items per key.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// Normalize folds case and collapses whitespace runs to one space.
func Normalize(s string) string {
	return normalize(cases.Fold(), s)
}

func normalize(folder cases.Caser, s string) string {
	return folder.String(strings.Join(strings.Fields(s), " "))
}
