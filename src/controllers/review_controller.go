package controllers

import (
	submissionSvc "Backend-NetZero/src/services/submissions"
	"Backend-NetZero/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListSubmissions - submission ทั้งหมดสำหรับหน้ารีวิวฝั่ง admin
// @Summary      List all submissions
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.Submission
// @Router       /admin/submissions [get]
func ListSubmissions(c *fiber.Ctx) error {
	subs, err := submissionSvc.ListAll(c.Context())
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(subs)
}

// GetSubmissionByID - เปิดดู submission เดียว
// @Summary      Get one submission
// @Tags         review
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Submission ID"
// @Success      200  {object}  models.Submission
// @Failure      404  {object}  models.ErrorResponse
// @Router       /admin/submissions/{id} [get]
func GetSubmissionByID(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid ID format")
	}

	sub, err := submissionSvc.GetByID(c.Context(), id)
	if err != nil {
		return utils.HandleError(c, fiber.StatusNotFound, "Submission not found")
	}
	return c.JSON(sub)
}

// RateSection - ให้คะแนน + remark หนึ่ง section (คะแนนถูก clamp เข้า [0,1])
// เส้นนี้แยกจาก UpdateSection ของ supplier และผ่าน RequireAdmin เท่านั้น
// @Summary      Rate one section of a submission
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id        path  string  true  "Submission ID"
// @Param        category  path  string  true  "Category key"
// @Param        section   path  string  true  "Section key"
// @Success      200  {object}  models.Submission
// @Failure      400  {object}  models.ErrorResponse
// @Router       /admin/submissions/{id}/{category}/{section}/rating [put]
func RateSection(c *fiber.Ctx) error {
	type RatingRequest struct {
		Points  float64 `json:"points"`
		Remarks string  `json:"remarks" validate:"max=2000"`
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid ID format")
	}

	var req RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "remarks too long")
	}

	sub, err := submissionSvc.RateSection(c.Context(), id, c.Params("category"), c.Params("section"), req.Points, req.Remarks)
	if err != nil {
		if err == submissionSvc.ErrNotFound {
			return utils.HandleError(c, fiber.StatusNotFound, "Submission not found")
		}
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(sub)
}

// SetSubmissionStatus - ตัดสิน approved/rejected
// @Summary      Approve or reject a submission
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Submission ID"
// @Success      200  {object}  models.Submission
// @Failure      400  {object}  models.ErrorResponse
// @Router       /admin/submissions/{id}/status [put]
func SetSubmissionStatus(c *fiber.Ctx) error {
	type StatusRequest struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid ID format")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "status must be approved or rejected")
	}

	sub, err := submissionSvc.SetStatus(c.Context(), id, req.Status)
	if err != nil {
		if err == submissionSvc.ErrNotFound {
			return utils.HandleError(c, fiber.StatusNotFound, "Submission not found")
		}
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(sub)
}
