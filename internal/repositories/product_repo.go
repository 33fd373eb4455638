package repositories

import (
	"errors"

	"storefront/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ProductRepository defines the interface for the local catalog mirror.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
	GetByCategory(categoryID int) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id int) error
	GetCategories() ([]models.Category, error)
	SaveCategory(category *models.Category) error
}
