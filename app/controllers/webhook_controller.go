package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
)

// HandlePagSeguroWebhook receives PagSeguro transaction notifications. The
// body only carries a notification code; the transaction itself is fetched
// back from the provider API with our credentials, so the payload cannot be
// forged. Provider outages return 500 so PagSeguro redelivers; everything
// else is acknowledged with 200, including redeliveries and notifications
// for unknown payments.
func HandlePagSeguroWebhook(c *fiber.Ctx) error {
	notificationCode := c.FormValue("notificationCode")
	if notificationCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "notificationCode is required"})
	}

	err := paymentService().WebhookConfirm(c.Context(), notificationCode)
	if err != nil {
		var pErr *apperrors.ProviderError
		if errors.As(err, &pErr) {
			log.Errorf("[Webhook] pagseguro lookup failed for %s: %v", notificationCode, pErr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "provider_error", "message": "notification lookup failed"})
		}

		log.Errorf("[Webhook] pagseguro notification %s: %v", notificationCode, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "notification processing failed"})
	}

	return c.SendStatus(fiber.StatusOK)
}
