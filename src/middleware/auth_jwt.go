package middleware

import (
	"Backend-NetZero/src/models"
	"Backend-NetZero/src/utils"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func AuthJWT(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or invalid Authorization header"})
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	// token ที่ logout ไปแล้วใช้ไม่ได้
	blacklisted, err := utils.IsTokenBlacklisted(tokenStr)
	if err == nil && blacklisted {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token has been revoked"})
	}

	claims, err := utils.ParseJWT(tokenStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token", "detail": err.Error()})
	}

	c.Locals("userId", claims.UserID)
	c.Locals("email", claims.Email)
	c.Locals("role", claims.Role)

	return c.Next()
}

// RequireAdmin ใช้ต่อจาก AuthJWT สำหรับ route ฝั่ง review เท่านั้น
// Supplier ห้ามเรียก rating/status path (points/remarks เขียนได้จาก reviewer เท่านั้น)
func RequireAdmin(c *fiber.Ctx) error {
	if c.Locals("role") != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin role required"})
	}
	return c.Next()
}

// RequireSupplier ใช้กับ route ที่แก้ไขข้อมูล submission ของตัวเอง
func RequireSupplier(c *fiber.Ctx) error {
	if c.Locals("role") != models.RoleSupplier {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Supplier role required"})
	}
	return c.Next()
}
