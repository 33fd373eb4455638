package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products   map[int]models.Product
	categories map[int]models.Category
	nextID     int
	mu         sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products:   make(map[int]models.Product),
		categories: make(map[int]models.Category),
		nextID:     1,
	}
}

// GetAll returns all products ordered by ID.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, r.withCategory(p))
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	product = r.withCategory(product)
	return &product, nil
}

// GetByCategory returns the products of a category ordered by ID.
func (r *MockProductRepository) GetByCategory(categoryID int) ([]models.Product, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	productList := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.CategoryID == categoryID {
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// Create adds a new product, assigning the next free ID when none is set.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		for {
			if _, taken := r.products[r.nextID]; !taken {
				break
			}
			r.nextID++
		}
		product.ID = r.nextID
	}
	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product with ID %d already exists", product.ID)
	}
	if product.Category.ID != 0 {
		product.CategoryID = product.Category.ID
		r.categories[product.Category.ID] = product.Category
	}
	now := time.Now()
	if product.CreationAt.IsZero() {
		product.CreationAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %d not found for update: %w", product.ID, ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// GetCategories returns all categories ordered by ID.
func (r *MockProductRepository) GetCategories() ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categoryList := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categoryList = append(categoryList, c)
	}
	sort.Slice(categoryList, func(i, j int) bool { return categoryList[i].ID < categoryList[j].ID })
	return categoryList, nil
}

// SaveCategory inserts or replaces a category.
func (r *MockProductRepository) SaveCategory(category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == 0 {
		return fmt.Errorf("category ID is required")
	}
	r.categories[category.ID] = *category
	return nil
}

// withCategory must be called with the lock held.
func (r *MockProductRepository) withCategory(p models.Product) models.Product {
	if c, ok := r.categories[p.CategoryID]; ok {
		p.Category = c
	}
	return p
}
