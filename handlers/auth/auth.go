package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/utils/auth"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"github.com/sahilchouksey/dpms-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles staff registration and login
type AuthHandler struct {
	db         *gorm.DB
	jwtManager *auth.JWTManager
	validator  *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		db:         db,
		jwtManager: jwtManager,
		validator:  validation.NewValidator(),
	}
}

// RegisterRequest represents the request body for staff registration
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	TeacherTID string `json:"teacher_tid" validate:"omitempty,max=50"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Email = validation.SanitizeString(req.Email)
	req.Name = validation.SanitizeString(req.Name)

	// Check if email is taken
	var existing model.StaffAccount
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "Account with this email already exists")
	}

	// A linked teacher must exist
	if req.TeacherTID != "" {
		var teacher model.Teacher
		if err := h.db.Where("tid = ?", req.TeacherTID).First(&teacher).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Teacher not found")
			}
			return response.InternalServerError(c, "Failed to verify teacher")
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to hash password")
	}

	account := model.StaffAccount{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         "teacher",
		TeacherTID:   req.TeacherTID,
	}
	if err := h.db.Create(&account).Error; err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	return response.Created(c, account)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var account model.StaffAccount
	if err := h.db.Where("email = ?", req.Email).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Same response as a bad password so emails can't be probed.
			return response.Unauthorized(c, "Invalid email or password")
		}
		return response.InternalServerError(c, "Failed to load account")
	}

	if err := auth.VerifyPassword(account.PasswordHash, req.Password); err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}

	token, err := h.jwtManager.GenerateToken(account.ID, account.Email, account.Role, account.TeacherTID)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.Success(c, fiber.Map{
		"token":   token,
		"account": account,
	})
}
