package handlers

import (
	"strconv"

	"storefront/internal/notify"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler exposes the recent notifications so clients can show toasts.
type NotificationHandler struct {
	feed *notify.Feed
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(feed *notify.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/notifications", h.HandleGetNotifications)
}

// HandleGetNotifications returns the notifications after ?after=<seq>.
func (h *NotificationHandler) HandleGetNotifications(c *fiber.Ctx) error {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid after parameter", err)
		}
		after = parsed
	}
	return c.JSON(h.feed.Since(after))
}
