package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubshop-app/ClubShop/app/repository"
	"github.com/clubshop-app/ClubShop/internal/pkg/database"
	"github.com/clubshop-app/ClubShop/internal/pkg/membership"
	"github.com/clubshop-app/ClubShop/internal/pkg/usercontext"
)

type planCheckoutRequest struct {
	Method string `json:"method" validate:"required"`
}

// HandleListPlans returns the membership plans open for purchase.
func HandleListPlans(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	plans, err := repos.Plan.GetActive()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"plans": plans})
}

// HandlePlanCheckout opens a membership period for the caller and the
// payment that will activate it.
func HandlePlanCheckout(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req planCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	svc := membership.NewServiceFromDB(database.GetDB())

	ms, err := svc.CheckoutPlan(user.UserID, planID, req.Method)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"membership": ms,
		"payment":    ms.Payment,
		"status":     ms.Payment.Status(),
	})
}

// HandleMyMemberships lists the caller's membership history.
func HandleMyMemberships(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	repos := repository.GetGlobalRepositories()
	memberships, err := repos.Membership.GetByUserID(user.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"memberships": memberships})
}
