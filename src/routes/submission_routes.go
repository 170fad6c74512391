package routes

import (
	"Backend-NetZero/src/controllers"
	"Backend-NetZero/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func SubmissionRoutes(app *fiber.App) {
	submissions := app.Group("/submissions")

	// schema เป็น public ให้ frontend render ฟอร์มได้ก่อน login
	submissions.Get("/schemas", controllers.GetSchemas)

	// ฝั่ง supplier เท่านั้น (points/remarks ไม่อยู่ใน SectionInput อยู่แล้ว)
	me := submissions.Group("/me", middleware.AuthJWT, middleware.RequireSupplier)
	me.Get("/", controllers.GetMySubmission)
	me.Post("/submit", controllers.SubmitSubmission)
	me.Put("/:category/:section", controllers.UpdateSection)
	me.Post("/:category/:section/certificate", controllers.UploadCertificate)
}
