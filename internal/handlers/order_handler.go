package handlers

import (
	"fmt"
	"strconv"

	"storefront/internal/models"
	"storefront/internal/query"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orders   *services.OrderService
	catalog  *services.CatalogService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, catalog *services.CatalogService) *OrderHandler {
	return &OrderHandler{orders: orders, catalog: catalog, validate: validator.New()}
}

// OrderView is an order with the statuses it may move to next.
type OrderView struct {
	models.Order
	AllowedTransitions []models.OrderStatus `json:"allowedTransitions"`
}

// BuyNowRequest orders a catalog product directly, skipping the cart.
type BuyNowRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// StatusUpdateRequest is the body of a status change.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
	models.ShipmentDetails
}

// RegisterRoutes registers the order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/stats", h.HandleGetStats)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleBuyNow)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/", h.HandleClear)
}

// HandleGetOrders returns a page of orders, optionally narrowed by ?status=.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	p, err := viewParams(c, query.OrderPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	spec, err := query.OrderSpec(c.Query("status"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid status filter", err)
	}
	page, err := query.Run(h.orders.Orders(), spec, p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(page)
}

// HandleGetStats returns the order counts per status.
func (h *OrderHandler) HandleGetStats(c *fiber.Ctx) error {
	return c.JSON(h.orders.Stats())
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, ok := h.orders.Order(orderID)
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID), nil)
	}
	return c.JSON(OrderView{Order: order, AllowedTransitions: services.AllowedTransitions(order.Status)})
}

// HandleBuyNow creates a pending order for a catalog product.
func (h *OrderHandler) HandleBuyNow(c *fiber.Ctx) error {
	var req BuyNowRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return mutationError(c, "create order", err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.ProductByID(c.UserContext(), req.ProductID)
	if err != nil {
		return queryError(c, err)
	}
	created, err := h.orders.AddOrder(models.Order{
		ProductID: strconv.Itoa(product.ID),
		Title:     product.Title,
		Price:     product.Price,
		Image:     product.PrimaryImage(),
		Quantity:  req.Quantity,
	})
	if err != nil {
		return mutationError(c, "create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateOrderStatus moves an order along its lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body for status update", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return mutationError(c, "update order status", err)
	}

	ok, err := h.orders.UpdateStatus(orderID, models.OrderStatus(req.Status), &req.ShipmentDetails)
	if err != nil {
		return mutationError(c, "update order status", err)
	}
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID), nil)
	}
	order, _ := h.orders.Order(orderID)
	return c.JSON(OrderView{Order: order, AllowedTransitions: services.AllowedTransitions(order.Status)})
}

// HandleClear removes every order.
func (h *OrderHandler) HandleClear(c *fiber.Ctx) error {
	h.orders.Clear()
	return c.JSON(fiber.Map{"message": "Orders cleared"})
}
