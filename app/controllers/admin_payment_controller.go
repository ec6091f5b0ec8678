package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubshop-app/ClubShop/internal/pkg/usercontext"
)

// HandleAdminListPendingPayments lists payments still awaiting settlement or
// manual confirmation, oldest first, for the staff review queue.
func HandleAdminListPendingPayments(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	pending, err := paymentService().ListPending(user.Buyer(), offset, limit)
	if err != nil {
		return respondError(c, err)
	}

	type pendingEntry struct {
		Payment interface{} `json:"payment"`
		Status  string      `json:"status"`
	}

	entries := make([]pendingEntry, 0, len(pending))
	for i := range pending {
		entries = append(entries, pendingEntry{Payment: pending[i], Status: pending[i].Status()})
	}

	return c.JSON(fiber.Map{"payments": entries, "offset": offset, "limit": limit})
}
