package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/clubshop-app/ClubShop/app/controllers"
	"github.com/clubshop-app/ClubShop/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Catalog is public so visitors can browse; tier pricing resolves to the
	// base price for anonymous callers.
	store := v1.Group("/store")
	store.Get("/items", controllers.HandleStoreItems)
	store.Get("/items/:id", controllers.HandleStoreItem)

	v1.Get("/plans", controllers.HandleListPlans)

	cart := v1.Group("/cart", middleware.RequireAuth)
	cart.Get("/", controllers.HandleGetCart)
	cart.Post("/items", controllers.HandleAddCartItem)
	cart.Delete("/items/:id", controllers.HandleRemoveCartItem)

	orders := v1.Group("/orders", middleware.RequireAuth)
	orders.Post("/checkout", controllers.HandleCheckout)

	pay := v1.Group("/payments", middleware.RequireAuth)
	pay.Get("/:id", controllers.HandleGetPayment)
	pay.Patch("/:id/method", controllers.HandleSwitchPaymentMethod)
	pay.Post("/:id/proof", controllers.HandleUploadProof)
	pay.Delete("/:id/proof", controllers.HandleRemoveProof)
	pay.Post("/:id/confirm", middleware.RequireStaff, controllers.HandleConfirmPayment)
	pay.Post("/:id/cancel", controllers.HandleCancelPayment)
	pay.Post("/:id/hosted-session", controllers.HandleHostedSession)

	plans := v1.Group("/plans", middleware.RequireAuth)
	plans.Post("/:id/checkout", controllers.HandlePlanCheckout)

	v1.Get("/memberships", middleware.RequireAuth, controllers.HandleMyMemberships)

	admin := v1.Group("/admin", middleware.RequireAuth, middleware.RequireStaff)
	admin.Get("/payments", controllers.HandleAdminListPendingPayments)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
