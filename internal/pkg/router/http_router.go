package router

import (
	"github.com/clubshop-app/ClubShop/app/controllers"
	"github.com/clubshop-app/ClubShop/internal/pkg/middleware"
	"github.com/clubshop-app/ClubShop/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	auth := app.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
	auth.Get("/me", middleware.RequireAuth, controllers.HandleMe)

	// Provider callbacks live outside the API group: no session, no auth,
	// called by the provider's backend.
	app.Post("/webhooks/pagseguro", controllers.HandlePagSeguroWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
