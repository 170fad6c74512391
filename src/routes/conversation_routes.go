package routes

import (
	"Backend-NetZero/src/controllers"
	"Backend-NetZero/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func ConversationRoutes(app *fiber.App) {
	chats := app.Group("/chats", middleware.AuthJWT)

	chats.Get("/", controllers.ListConversations)
	chats.Post("/", controllers.CreateConversation)
	chats.Get("/counterparts", controllers.ListCounterparts)
	chats.Get("/:id", controllers.GetConversation)
	chats.Post("/:id/messages", controllers.SendMessage)
}
