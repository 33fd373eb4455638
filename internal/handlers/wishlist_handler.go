package handlers

import (
	"storefront/internal/models"
	"storefront/internal/query"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles HTTP requests for the wishlist.
type WishlistHandler struct {
	wishlist *services.WishlistService
	cart     *services.CartService
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(wishlist *services.WishlistService, cart *services.CartService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, cart: cart}
}

// RegisterRoutes registers the wishlist routes behind auth.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	wishlistRoutes := router.Group("/wishlist", auth)
	wishlistRoutes.Get("/", h.HandleGetWishlist)
	wishlistRoutes.Post("/", h.HandleAdd)
	wishlistRoutes.Delete("/", h.HandleClear)
	wishlistRoutes.Get("/:id", h.HandleContains)
	wishlistRoutes.Delete("/:id", h.HandleRemove)
	wishlistRoutes.Post("/:id/move-to-cart", h.HandleMoveToCart)
}

// HandleGetWishlist returns a page of the wishlist.
func (h *WishlistHandler) HandleGetWishlist(c *fiber.Ctx) error {
	p, err := viewParams(c, query.WishlistPageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}
	page, err := query.Run(h.wishlist.Entries(), query.WishlistSpec(), p)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(page)
}

// HandleAdd saves a product to the wishlist. A product already saved answers 200 with changed=false.
func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	var entry models.WishlistEntry
	if err := c.BodyParser(&entry); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	added, err := h.wishlist.Add(entry)
	if err != nil {
		return mutationError(c, "add item to wishlist", err)
	}
	if !added {
		return c.JSON(changed("Item is already in the wishlist", false))
	}
	saved, _ := h.wishlist.Entry(entry.ID)
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// HandleContains reports whether a product is on the wishlist.
func (h *WishlistHandler) HandleContains(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"id": c.Params("id"), "inWishlist": h.wishlist.Contains(c.Params("id"))})
}

// HandleRemove removes a product from the wishlist.
func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	ok := h.wishlist.Remove(c.Params("id"))
	return c.JSON(changed("Item removed from wishlist", ok))
}

// HandleClear empties the wishlist.
func (h *WishlistHandler) HandleClear(c *fiber.Ctx) error {
	h.wishlist.Clear()
	return c.JSON(fiber.Map{"message": "Wishlist cleared"})
}

// HandleMoveToCart adds a wishlist entry to the cart. The entry stays on the wishlist.
func (h *WishlistHandler) HandleMoveToCart(c *fiber.Ctx) error {
	id := c.Params("id")
	entry, ok := h.wishlist.Entry(id)
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, "Item "+id+" is not in the wishlist", nil)
	}
	line := models.CartLine{ID: entry.ID, Title: entry.Title, Price: entry.Price, Image: entry.Image}
	if err := h.cart.AddLine(line); err != nil {
		return mutationError(c, "add item to cart", err)
	}
	added, _ := h.cart.Line(id)
	return c.JSON(added)
}
