package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/utils/auth"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		db:         db,
	}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		// Validate token
		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// Verify the account still exists
		var account model.StaffAccount
		if err := m.db.First(&account, claims.AccountID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Unauthorized(c, "Account not found")
			}
			return response.InternalServerError(c, "Failed to load account")
		}

		// Store staff identity in context. The teacher TID is read from
		// the account row, not the token, so relinking a teacher takes
		// effect without a fresh login.
		c.Locals("account_id", account.ID)
		c.Locals("account_role", account.Role)
		c.Locals("teacher_tid", account.TeacherTID)
		c.Locals("account", &account)

		return c.Next()
	}
}

// RequireAdmin restricts a route to admin accounts. Register it after
// Required.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("account_role").(string)
		if role != "admin" {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// CurrentTeacherTID returns the teacher identity linked to the
// logged-in account; empty when the account has none.
func CurrentTeacherTID(c *fiber.Ctx) string {
	tid, _ := c.Locals("teacher_tid").(string)
	return tid
}

// GetAccount retrieves the authenticated account from context
func GetAccount(c *fiber.Ctx) (*model.StaffAccount, bool) {
	account, ok := c.Locals("account").(*model.StaffAccount)
	return account, ok
}
