package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/query"

	"golang.org/x/sync/errgroup"
)

// ErrEmptySearch is returned when a search is requested without a term.
var ErrEmptySearch = errors.New("search term is required")

// homeCategories is how many categories the home page features.
const homeCategories = 5

// CatalogService builds the product views on top of a catalog.Source.
type CatalogService struct {
	source catalog.Source
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(source catalog.Source) *CatalogService {
	return &CatalogService{source: source}
}

// HomeView is what the landing page shows.
type HomeView struct {
	Products   query.Page[models.Product] `json:"products"`
	Categories []models.Category          `json:"categories"`
}

// ListProducts returns one page of the catalog.
func (s *CatalogService) ListProducts(ctx context.Context, p query.Params) (query.Page[models.Product], error) {
	products, err := s.source.FetchProducts(ctx)
	if err != nil {
		return query.Page[models.Product]{}, err
	}
	if err := ctx.Err(); err != nil {
		return query.Page[models.Product]{}, err
	}
	return query.Run(products, query.ProductSpec(0), p.WithDefaults(query.ProductPageSize))
}

// ProductByID returns a single product.
func (s *CatalogService) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.source.FetchProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return product, nil
}

// CategoryProducts returns one page of the products in a category.
func (s *CatalogService) CategoryProducts(ctx context.Context, categoryID int, p query.Params) (query.Page[models.Product], error) {
	products, err := s.source.FetchProductsByCategory(ctx, categoryID)
	if err != nil {
		return query.Page[models.Product]{}, err
	}
	if err := ctx.Err(); err != nil {
		return query.Page[models.Product]{}, err
	}
	return query.Run(products, query.ProductSpec(categoryID), p.WithDefaults(query.ProductPageSize))
}

// Search matches the term against title, description and category name across the whole catalog.
func (s *CatalogService) Search(ctx context.Context, p query.Params) (query.Page[models.Product], error) {
	if strings.TrimSpace(p.Search) == "" {
		return query.Page[models.Product]{}, ErrEmptySearch
	}
	return s.ListProducts(ctx, p)
}

// Categories lists every category.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.source.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// Home fetches the first product page and the featured categories concurrently.
func (s *CatalogService) Home(ctx context.Context, p query.Params) (HomeView, error) {
	var view HomeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.ListProducts(gctx, p)
		view.Products = page
		return err
	})
	g.Go(func() error {
		categories, err := s.Categories(gctx)
		if len(categories) > homeCategories {
			categories = categories[:homeCategories]
		}
		view.Categories = categories
		return err
	})
	if err := g.Wait(); err != nil {
		return HomeView{}, err
	}
	return view, nil
}
