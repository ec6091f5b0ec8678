package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubshop-app/ClubShop/internal/pkg/pricing"
)

// UserContext represents the complete caller identity for a request. The
// tier flags are resolved once by the middleware when the request enters and
// passed explicitly into the core services; handlers never re-query them.
type UserContext struct {
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
	IsLoggedIn    bool   `json:"is_logged_in"`
	IsStaff       bool   `json:"is_staff"`
	IsMember      bool   `json:"is_member"`
	IsAthlete     bool   `json:"is_athlete"`
	IsCoordinator bool   `json:"is_coordinator"`
}

// Buyer projects the request identity into the tier flags the pricing
// engine and the commerce guards need.
func (u UserContext) Buyer() pricing.BuyerContext {
	return pricing.BuyerContext{
		UserID:        u.UserID,
		IsMember:      u.IsMember,
		IsAthlete:     u.IsAthlete,
		IsCoordinator: u.IsCoordinator,
		IsStaff:       u.IsStaff,
	}
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsStaff: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsStaff checks if the current user belongs to the staff group
func IsStaff(c *fiber.Ctx) bool {
	return GetUserContext(c).IsStaff
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
