// Package catalog provides the product catalog the storefront reads from.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// ErrProductNotFound is returned when the catalog has no product with the requested id.
var ErrProductNotFound = errors.New("product not found")

// Source is a read-only product catalog.
type Source interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	FetchProductByID(ctx context.Context, id int) (*models.Product, error)
	FetchProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

// StatusError reports a non-2xx answer from the remote catalog.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog request %s failed with status %d", e.URL, e.StatusCode)
}
