package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
)

// Shared Locals/session keys set by the auth flow and middleware.
const (
	FROM_PROTECTED string = "from_protected"
	USER_ID        string = "user_id"
	USER_IS_STAFF  string = "isStaff"
)

// parseIDParam reads a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidation("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// respondError maps the core error taxonomy onto HTTP responses. Validation
// and state-conflict messages are surfaced verbatim; provider failures get a
// generic retry message so provider internals never leak to callers.
func respondError(c *fiber.Ctx, err error) error {
	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": vErr.Message})
	}

	var stockErr *apperrors.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":     "insufficient_stock",
			"message":   stockErr.Error(),
			"item_id":   stockErr.ItemID,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	}

	var pErr *apperrors.ProviderError
	if errors.As(err, &pErr) {
		log.Errorf("[Payments] provider failure: %v", pErr)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "provider_error",
			"message": "payment provider is unavailable, please try again",
		})
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, apperrors.ErrEmptyOrder),
		errors.Is(err, apperrors.ErrUnsupportedMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_state", "message": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyFinalized),
		errors.Is(err, apperrors.ErrAlreadyConfirmed),
		errors.Is(err, apperrors.ErrNotCancelable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "state_conflict", "message": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unauthorized", "message": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": err.Error()})
	}

	log.Errorf("[API] unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "something went wrong"})
}
