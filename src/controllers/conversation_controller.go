package controllers

import (
	"Backend-NetZero/src/models"
	conversationSvc "Backend-NetZero/src/services/conversations"
	"Backend-NetZero/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListConversations - ห้องแชททั้งหมดของ user ปัจจุบัน
// @Summary      List my conversations
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /chats [get]
func ListConversations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}
	role, _ := c.Locals("role").(string)

	convs, err := conversationSvc.ListForUser(c.Context(), userID, role)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

// GetConversation - เปิดห้องแชท (side effect: mark read ฝั่งผู้เรียก)
// @Summary      Get one conversation and mark it read
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Conversation ID"
// @Success      200  {object}  models.Conversation
// @Failure      404  {object}  models.ErrorResponse
// @Router       /chats/{id} [get]
func GetConversation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}
	role, _ := c.Locals("role").(string)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid ID format")
	}

	conv, err := conversationSvc.GetAndMarkRead(c.Context(), id, userID, role)
	if err != nil {
		switch err {
		case conversationSvc.ErrNotFound:
			return utils.HandleError(c, fiber.StatusNotFound, "Conversation not found")
		case conversationSvc.ErrNotParticipant:
			return utils.HandleError(c, fiber.StatusForbidden, err.Error())
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(conv)
}

// CreateConversation - เปิดห้องใหม่กับ counterpart (หรือคืนห้องเดิมถ้ามีแล้ว)
// @Summary      Create (or reuse) a conversation with a counterpart
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Router       /chats [post]
func CreateConversation(c *fiber.Ctx) error {
	type CreateRequest struct {
		CounterpartID string `json:"counterpartId" validate:"required"`
	}

	userID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}
	role, _ := c.Locals("role").(string)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "counterpartId is required")
	}

	counterpartID, err := primitive.ObjectIDFromHex(req.CounterpartID)
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid counterpart ID")
	}

	supplierID, adminID := userID, counterpartID
	if role == models.RoleAdmin {
		supplierID, adminID = counterpartID, userID
	}

	conv, err := conversationSvc.Create(c.Context(), supplierID, adminID)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": conv})
}

// SendMessage - ส่งข้อความเข้าห้อง
// @Summary      Send a message
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Conversation ID"
// @Success      201  {object}  models.Conversation
// @Failure      400  {object}  models.ErrorResponse
// @Router       /chats/{id}/messages [post]
func SendMessage(c *fiber.Ctx) error {
	type SendRequest struct {
		Content string `json:"content" validate:"required"`
	}

	userID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}
	role, _ := c.Locals("role").(string)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid ID format")
	}

	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	conv, err := conversationSvc.SendMessage(c.Context(), id, userID, role, req.Content)
	if err != nil {
		switch err {
		case conversationSvc.ErrNotFound:
			return utils.HandleError(c, fiber.StatusNotFound, "Conversation not found")
		case conversationSvc.ErrNotParticipant:
			return utils.HandleError(c, fiber.StatusForbidden, err.Error())
		case conversationSvc.ErrEmptyMessage:
			return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

// ListCounterparts - รายชื่อคู่สนทนา (admin สำหรับ supplier และกลับกัน)
// @Summary      List conversation counterpart candidates
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.User
// @Router       /chats/counterparts [get]
func ListCounterparts(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)

	users, err := conversationSvc.ListCounterparts(c.Context(), role)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(users)
}
