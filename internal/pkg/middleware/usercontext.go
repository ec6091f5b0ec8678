package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clubshop-app/ClubShop/app/controllers"
	"github.com/clubshop-app/ClubShop/app/repository"
	"github.com/clubshop-app/ClubShop/internal/pkg/database"
	"github.com/clubshop-app/ClubShop/internal/pkg/session"
	"github.com/clubshop-app/ClubShop/internal/pkg/tiercache"
	"github.com/clubshop-app/ClubShop/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the complete caller identity for every
// request: session user plus the tier flags the pricing engine and payment
// guards need. Tiers are resolved here, once, at request time. The member
// flag is held in the Redis cache for a short TTL and invalidated when a
// membership payment settles or cancels; it is never stored on the user row.
func UserContextMiddleware(c *fiber.Ctx) error {
	anonymous := func() error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsStaff:    false,
		})
		c.Locals(controllers.FROM_PROTECTED, false)
		c.Locals(controllers.USER_IS_STAFF, false)
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return anonymous()
	}

	userID := sess.Get(controllers.USER_ID)
	if userID == nil {
		return anonymous()
	}

	uid, ok := userID.(uint)
	if !ok {
		return anonymous()
	}

	db := database.GetDB()
	if db == nil {
		return anonymous()
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(uid)
	if err != nil || !user.IsActive() {
		return anonymous()
	}

	isMember, cached := tiercache.Get(uid)
	if !cached {
		isMember, err = repos.Membership.HasActiveMembership(uid, time.Now())
		if err != nil {
			isMember = false
		} else {
			tiercache.Set(uid, isMember)
		}
	}

	userCtx := usercontext.UserContext{
		UserID:        user.ID,
		Email:         user.Email,
		IsLoggedIn:    true,
		IsStaff:       user.IsStaff(),
		IsMember:      isMember,
		IsAthlete:     user.IsAthlete,
		IsCoordinator: user.IsCoordinator,
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(controllers.FROM_PROTECTED, true)
	c.Locals(controllers.USER_ID, user.ID)
	c.Locals(controllers.USER_IS_STAFF, userCtx.IsStaff)

	return c.Next()
}
