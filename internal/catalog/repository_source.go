package catalog

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// RepositorySource serves the catalog from a local ProductRepository.
type RepositorySource struct {
	repo repositories.ProductRepository
}

// NewRepositorySource creates a new RepositorySource.
func NewRepositorySource(repo repositories.ProductRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.repo.GetAll()
}

func (s *RepositorySource) FetchProductByID(ctx context.Context, id int) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return product, err
}

func (s *RepositorySource) FetchProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.repo.GetByCategory(categoryID)
}

func (s *RepositorySource) FetchCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.repo.GetCategories()
}
