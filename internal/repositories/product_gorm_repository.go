package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("Category").Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id int) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// GetByCategory retrieves the products of one category.
func (r *GORMProductRepository) GetByCategory(categoryID int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").Where("category_id = ?", categoryID).Order("id").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products for category %d: %w", categoryID, err)
	}
	return products, nil
}

// Create creates a new product in the database. The product's category is upserted with it.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.Category.ID != 0 {
		product.CategoryID = product.Category.ID
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"title":       product.Title,
		"slug":        product.Slug,
		"price":       product.Price,
		"description": product.Description,
		"category_id": product.CategoryID,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d not found for update: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id int) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// GetCategories retrieves all categories.
func (r *GORMProductRepository) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// SaveCategory inserts or replaces a category.
func (r *GORMProductRepository) SaveCategory(category *models.Category) error {
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(category).Error; err != nil {
		return fmt.Errorf("failed to save category %d: %w", category.ID, err)
	}
	return nil
}
