package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/catalog"
	"storefront/internal/query"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func errorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// validationResponse renders validator errors as a per-field map. It reports false for any other error.
func validationResponse(c *fiber.Ctx, err error) (bool, error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, nil
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// mutationError maps the errors of a collection mutation to a response.
func mutationError(c *fiber.Ctx, action string, err error) error {
	if ok, resp := validationResponse(c, err); ok {
		return resp
	}
	switch {
	case errors.Is(err, services.ErrInvalidItem):
		return errorResponse(c, fiber.StatusBadRequest, "Invalid item", err)
	case errors.Is(err, services.ErrInvalidTransition):
		return errorResponse(c, fiber.StatusConflict, "Order status change not allowed", err)
	case errors.Is(err, services.ErrEmptyCart):
		return errorResponse(c, fiber.StatusBadRequest, "Cart is empty", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorResponse(c, fiber.StatusRequestTimeout, "Request cancelled", err)
	}
	log.Printf("Error during %s: %v", action, err)
	return errorResponse(c, fiber.StatusInternalServerError, "Could not "+action, err)
}

// queryError maps view parameter errors to 400 and anything else to a catalog error.
func queryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, query.ErrUnknownSortKey),
		errors.Is(err, query.ErrInvalidPageSize),
		errors.Is(err, services.ErrEmptySearch):
		return errorResponse(c, fiber.StatusBadRequest, "Invalid view parameters", err)
	case errors.Is(err, catalog.ErrProductNotFound):
		return errorResponse(c, fiber.StatusNotFound, "Product not found", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorResponse(c, fiber.StatusRequestTimeout, "Request cancelled", err)
	}
	log.Printf("Error fetching catalog: %v", err)
	return errorResponse(c, fiber.StatusBadGateway, "Could not fetch catalog", err)
}

// viewParams parses q, sort, page and pageSize.
func viewParams(c *fiber.Ctx, pageSize int) (query.Params, error) {
	var p query.Params
	if err := c.QueryParser(&p); err != nil {
		return p, err
	}
	return p.WithDefaults(pageSize), nil
}

// changed is the body of a mutation that may be a no-op.
func changed(message string, ok bool) fiber.Map {
	return fiber.Map{"message": message, "changed": ok}
}
