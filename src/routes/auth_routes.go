package routes

import (
	"Backend-NetZero/src/controllers"
	"Backend-NetZero/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	auth.Post("/login", controllers.LoginUser)
	auth.Post("/register", controllers.RegisterSupplier)
	auth.Post("/refresh", controllers.RefreshToken)
	auth.Post("/password-reset/request", controllers.RequestPasswordReset)
	auth.Post("/password-reset/reset", controllers.ResetPassword)

	auth.Post("/logout", middleware.AuthJWT, controllers.Logout)
	auth.Get("/me", middleware.AuthJWT, controllers.Me)
}
