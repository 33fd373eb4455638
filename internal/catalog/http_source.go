package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// HTTPSource reads the catalog from a remote REST API laid out as
// /products, /products/{id}, /categories and /categories/{id}/products.
type HTTPSource struct {
	baseURL string
	timeout time.Duration
}

// NewHTTPSource creates a new HTTPSource.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (s *HTTPSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.get(ctx, "products", "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *HTTPSource) FetchProductByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := s.get(ctx, "product", fmt.Sprintf("/products/%d", id), &product)
	var statusErr *StatusError
	// The API answers 400 for ids it does not know.
	if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusBadRequest) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *HTTPSource) FetchProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	var products []models.Product
	if err := s.get(ctx, "category-products", fmt.Sprintf("/categories/%d/products", categoryID), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *HTTPSource) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.get(ctx, "categories", "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type response struct {
	code int
	body []byte
	err  error
}

// get issues one GET and decodes the JSON body into dst. An answer that
// arrives after ctx is done is discarded.
func (s *HTTPSource) get(ctx context.Context, op, path string, dst any) error {
	url := s.baseURL + path
	done := make(chan response, 1)
	go func() {
		agent := fiber.Get(url).Timeout(s.timeout)
		if err := agent.Parse(); err != nil {
			done <- response{err: err}
			return
		}
		code, body, errs := agent.Bytes()
		done <- response{code: code, body: body, err: errors.Join(errs...)}
	}()

	var res response
	select {
	case res = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if res.err != nil {
		metrics.RecordCatalogFetch(op, false)
		return fmt.Errorf("failed to fetch %s: %w", url, res.err)
	}
	if res.code < 200 || res.code > 299 {
		metrics.RecordCatalogFetch(op, false)
		return &StatusError{URL: url, StatusCode: res.code}
	}
	if err := json.Unmarshal(res.body, dst); err != nil {
		metrics.RecordCatalogFetch(op, false)
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	metrics.RecordCatalogFetch(op, true)
	return nil
}
