package handlers

import (
	"storefront/internal/query"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the catalog views.
type ProductHandler struct {
	catalog *services.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// RegisterRoutes registers the catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/home", h.HandleHome)
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id<int>", h.HandleGetProductByID)
	router.Get("/categories", h.HandleGetCategories)
	router.Get("/categories/:id<int>/products", h.HandleGetCategoryProducts)
	router.Get("/search", h.HandleSearch)
}

// HandleHome returns the first product page and the featured categories.
func (h *ProductHandler) HandleHome(c *fiber.Ctx) error {
	p, err := viewParams(c, query.ProductPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	view, err := h.catalog.Home(c.UserContext(), p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(view)
}

// HandleGetProducts returns a page of the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	p, err := viewParams(c, query.ProductPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	page, err := h.catalog.ListProducts(c.UserContext(), p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(page)
}

// HandleGetProductByID returns one product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid product ID", err)
	}
	product, err := h.catalog.ProductByID(c.UserContext(), id)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(product)
}

// HandleGetCategories lists every category.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(categories)
}

// HandleGetCategoryProducts returns a page of one category.
func (h *ProductHandler) HandleGetCategoryProducts(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid category ID", err)
	}
	p, err := viewParams(c, query.ProductPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	page, err := h.catalog.CategoryProducts(c.UserContext(), id, p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(page)
}

// HandleSearch searches the whole catalog for ?q=.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	p, err := viewParams(c, query.ProductPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	page, err := h.catalog.Search(c.UserContext(), p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(page)
}
