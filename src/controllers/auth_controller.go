package controllers

import (
	"Backend-NetZero/src/models"
	"Backend-NetZero/src/services"
	"Backend-NetZero/src/utils"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// LoginUser - สำหรับ login ทั้ง supplier และ admin
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/login [post]
func LoginUser(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
			"code":  "INVALID_REQUEST",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
			"code":  "MISSING_CREDENTIALS",
		})
	}

	user, err := services.AuthenticateUser(req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
			"code":  "INVALID_CREDENTIALS",
		})
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Token generation failed",
			"code":  "TOKEN_ERROR",
		})
	}

	refreshToken, err := utils.NewRefreshToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Token generation failed",
			"code":  "TOKEN_ERROR",
		})
	}
	if err := utils.StoreRefreshToken(user.ID.Hex(), refreshToken, utils.RefreshTokenTTL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store refresh token",
			"code":  "TOKEN_ERROR",
		})
	}

	return c.JSON(fiber.Map{
		"token":        token,
		"refreshToken": refreshToken,
		"expiresIn":    int(utils.AccessTokenTTL.Seconds()),
		"user": fiber.Map{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
		"message": "Login successful",
	})
}

// RegisterSupplier - supplier สมัครบัญชีเอง (admin สร้างผ่านช่องทางอื่น)
// @Summary      Register a supplier account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Router       /auth/register [post]
func RegisterSupplier(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "email, name and a password of at least 8 characters are required")
	}

	user, err := services.RegisterUser(req.Email, req.Password, req.Name, models.RoleSupplier)
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// RefreshToken - แลก refresh token เป็น access token ใหม่ (rotate ทุกครั้ง)
// @Summary      Refresh access token
// @Tags         auth
// @Router       /auth/refresh [post]
func RefreshToken(c *fiber.Ctx) error {
	type RefreshRequest struct {
		UserID       string `json:"userId" validate:"required"`
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "userId and refreshToken are required")
	}

	valid, err := utils.ValidateRefreshToken(req.UserID, req.RefreshToken)
	if err != nil || !valid {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	user, err := services.GetUserByID(userID)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "User not found")
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Token generation failed")
	}

	newRefresh, err := utils.NewRefreshToken()
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Token generation failed")
	}
	if err := utils.StoreRefreshToken(user.ID.Hex(), newRefresh, utils.RefreshTokenTTL); err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to rotate refresh token")
	}

	return c.JSON(fiber.Map{
		"token":        token,
		"refreshToken": newRefresh,
		"expiresIn":    int(utils.AccessTokenTTL.Seconds()),
	})
}

// Logout - blacklist access token ปัจจุบันและลบ refresh token
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Router       /auth/logout [post]
func Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(string)

	authHeader := c.Get("Authorization")
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	// blacklist จนกว่า access token จะหมดอายุเอง
	_ = utils.BlacklistToken(tokenStr, utils.AccessTokenTTL)
	_ = utils.DeleteRefreshToken(userID)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me - ข้อมูล user ปัจจุบันจาก token
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Router       /auth/me [get]
func Me(c *fiber.Ctx) error {
	userID, err := primitive.ObjectIDFromHex(c.Locals("userId").(string))
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid token subject")
	}

	user, err := services.GetUserByID(userID)
	if err != nil {
		return utils.HandleError(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(user)
}

// RequestPasswordReset - ขอ OTP สำหรับ reset password
// @Summary      Request password reset OTP
// @Tags         auth
// @Router       /auth/password-reset/request [post]
func RequestPasswordReset(c *fiber.Ctx) error {
	type ResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "A valid email is required")
	}

	if err := services.RequestPasswordReset(req.Email); err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to issue OTP")
	}

	// ตอบเหมือนกันเสมอ ไม่เปิดเผยว่า email มีในระบบหรือไม่
	return c.JSON(fiber.Map{"message": "If the email exists, an OTP has been sent"})
}

// ResetPassword - ตั้งรหัสผ่านใหม่ด้วย OTP
// @Summary      Reset password with OTP
// @Tags         auth
// @Router       /auth/password-reset/reset [post]
func ResetPassword(c *fiber.Ctx) error {
	type ResetConfirm struct {
		Email       string `json:"email" validate:"required,email"`
		OTP         string `json:"otp" validate:"required,len=6"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}

	var req ResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "email, 6-digit otp and a new password of at least 8 characters are required")
	}

	if err := services.ResetPassword(req.Email, req.OTP, req.NewPassword); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}
