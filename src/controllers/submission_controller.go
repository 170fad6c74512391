package controllers

import (
	"Backend-NetZero/src/models"
	submissionSvc "Backend-NetZero/src/services/submissions"
	uploadSvc "Backend-NetZero/src/services/uploads"
	"Backend-NetZero/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func currentUserID(c *fiber.Ctx) (primitive.ObjectID, error) {
	id, _ := c.Locals("userId").(string)
	return primitive.ObjectIDFromHex(id)
}

// GetSchemas - section/field definitions ของทุก category ให้ frontend render ฟอร์ม
// @Summary      Get questionnaire schemas
// @Tags         submissions
// @Produce      json
// @Success      200  {array}  models.CategorySchema
// @Router       /submissions/schemas [get]
func GetSchemas(c *fiber.Ctx) error {
	return c.JSON(models.Schemas())
}

// GetMySubmission - submission ของ supplier ที่ login อยู่
// ยังไม่เคยกรอก → 404 (ฝั่ง client ถือเป็น empty state ไม่ใช่ error)
// @Summary      Get the current supplier's submission
// @Tags         submissions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Submission
// @Failure      404  {object}  models.ErrorResponse
// @Router       /submissions/me [get]
func GetMySubmission(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}

	sub, err := submissionSvc.GetBySupplier(c.Context(), supplierID)
	if err != nil {
		if err == submissionSvc.ErrNotFound {
			return utils.HandleError(c, fiber.StatusNotFound, "No submission yet")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(sub)
}

// UpdateSection - บันทึกหนึ่ง section (value + certificate path)
// @Summary      Update one questionnaire section
// @Tags         submissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        category  path  string  true  "Category key"
// @Param        section   path  string  true  "Section key"
// @Success      200  {object}  models.Submission
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /submissions/me/{category}/{section} [put]
func UpdateSection(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}

	var in submissionSvc.SectionInput
	if err := c.BodyParser(&in); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	sub, err := submissionSvc.UpdateSection(c.Context(), supplierID, c.Params("category"), c.Params("section"), in)
	if err != nil {
		if err == submissionSvc.ErrNotEditable {
			return utils.HandleError(c, fiber.StatusConflict, err.Error())
		}
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(sub)
}

// UploadCertificate - อัปโหลดหลักฐานของ section → ได้ media path กลับไป
// path ที่ได้ต้องส่งต่อใน UpdateSection ไม่ใช่ตัวไฟล์
// @Summary      Upload a supporting document
// @Tags         submissions
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        category     path      string  true  "Category key"
// @Param        section      path      string  true  "Section key"
// @Param        certificate  formData  file    true  "Evidence file (pdf or image)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Router       /submissions/me/{category}/{section}/certificate [post]
func UploadCertificate(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}

	category := c.Params("category")
	section := c.Params("section")
	if !models.ValidCategory(category) {
		return utils.HandleError(c, fiber.StatusBadRequest, "Unknown category: "+category)
	}

	file, err := c.FormFile("certificate")
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "certificate file is required")
	}

	path, err := uploadSvc.SaveCertificate(file, supplierID.Hex(), category, section)
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"path": path})
}

// SubmitSubmission - ส่งทั้ง submission เข้ารีวิว (ตรวจความครบถ้วนที่นี่)
// @Summary      Submit the whole submission for review
// @Tags         submissions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Submission
// @Failure      400  {object}  models.ErrorResponse
// @Router       /submissions/me/submit [post]
func SubmitSubmission(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}

	sub, err := submissionSvc.Submit(c.Context(), supplierID)
	if err != nil {
		if err == submissionSvc.ErrNotFound {
			return utils.HandleError(c, fiber.StatusNotFound, "No submission to submit")
		}
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(sub)
}
