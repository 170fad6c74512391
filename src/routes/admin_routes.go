package routes

import (
	"Backend-NetZero/src/controllers"
	"Backend-NetZero/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	// เส้น review แยกจากเส้น supplier และบังคับ role Admin ทุกเส้น
	admin := app.Group("/admin", middleware.AuthJWT, middleware.RequireAdmin)

	admin.Get("/submissions", controllers.ListSubmissions)
	admin.Get("/submissions/:id", controllers.GetSubmissionByID)
	admin.Put("/submissions/:id/status", controllers.SetSubmissionStatus)
	admin.Put("/submissions/:id/:category/:section/rating", controllers.RateSection)
}
