package handlers

import (
	"storefront/internal/models"
	"storefront/internal/query"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	cart     *services.CartService
	checkout *services.CheckoutService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *services.CartService, checkout *services.CheckoutService) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout}
}

// CartView is one page of the cart together with the totals of the whole cart.
type CartView struct {
	query.Page[models.CartLine]
	Totals   models.CartTotals `json:"totals"`
	SortKeys []string          `json:"sortKeys"`
}

// RegisterRoutes registers the cart routes. Checkout runs behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Post("/checkout", auth, h.HandleCheckout)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddLine)
	cartRoutes.Delete("/", h.HandleClear)
	cartRoutes.Delete("/:id", h.HandleRemoveLine)
	cartRoutes.Post("/:id/increment", h.HandleIncrement)
	cartRoutes.Post("/:id/decrement", h.HandleDecrement)
}

// HandleGetCart returns a page of cart lines and the cart totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	p, err := viewParams(c, query.CartPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	lines := h.cart.Lines()
	spec := query.CartSpec()
	page, err := query.Run(lines, spec, p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(CartView{Page: page, Totals: services.ComputeTotals(lines), SortKeys: spec.SortKeys()})
}

// HandleAddLine adds a product to the cart.
func (h *CartHandler) HandleAddLine(c *fiber.Ctx) error {
	var line models.CartLine
	if err := c.BodyParser(&line); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.cart.AddLine(line); err != nil {
		return mutationError(c, "add item to cart", err)
	}
	added, _ := h.cart.Line(line.ID)
	return c.Status(fiber.StatusCreated).JSON(added)
}

// HandleRemoveLine removes a line from the cart.
func (h *CartHandler) HandleRemoveLine(c *fiber.Ctx) error {
	ok := h.cart.RemoveLine(c.Params("id"))
	return c.JSON(changed("Item removed from cart", ok))
}

// HandleIncrement adds one to a line quantity.
func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	return h.quantityResponse(c, h.cart.IncrementQuantity(c.Params("id")))
}

// HandleDecrement subtracts one from a line quantity. Quantity never drops below 1.
func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	return h.quantityResponse(c, h.cart.DecrementQuantity(c.Params("id")))
}

func (h *CartHandler) quantityResponse(c *fiber.Ctx, ok bool) error {
	id := c.Params("id")
	line, found := h.cart.Line(id)
	if !found {
		return errorResponse(c, fiber.StatusNotFound, "Item "+id+" is not in the cart", nil)
	}
	return c.JSON(fiber.Map{"changed": ok, "line": line})
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	h.cart.Clear()
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// HandleCheckout turns the cart into pending orders.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	result, err := h.checkout.Checkout(c.UserContext())
	if err != nil {
		return mutationError(c, "check out", err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
