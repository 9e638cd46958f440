package supplementary

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/services"
	"github.com/sahilchouksey/dpms-api/utils/middleware"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"github.com/sahilchouksey/dpms-api/utils/validation"
)

// SupplementaryHandler handles remedial-assignment requests
type SupplementaryHandler struct {
	suppService *services.SupplementaryService
	validator   *validation.Validator
}

// NewSupplementaryHandler creates a new supplementary handler
func NewSupplementaryHandler(suppService *services.SupplementaryService) *SupplementaryHandler {
	return &SupplementaryHandler{
		suppService: suppService,
		validator:   validation.NewValidator(),
	}
}

// AssignRequest represents the request body for a bulk assignment run.
// TeacherTID is optional: it defaults to the logged-in teacher.
type AssignRequest struct {
	CourseCode string `json:"course_code" validate:"required,min=1,max=50"`
	TeacherTID string `json:"teacher_tid" validate:"omitempty,min=1,max=50"`
	Reason     string `json:"reason" validate:"omitempty,max=500"`
}

// EditRequest represents the request body for reassigning an instructor
type EditRequest struct {
	TeacherTID string `json:"teacher_tid" validate:"required,min=1,max=50"`
}

// Assign handles POST /api/v1/supplementary/assign
func (h *SupplementaryHandler) Assign(c *fiber.Ctx) error {
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	tid := req.TeacherTID
	if tid == "" {
		tid = middleware.CurrentTeacherTID(c)
	}
	if tid == "" {
		return response.BadRequest(c, "No teacher TID provided and none linked to this account")
	}

	result, err := h.suppService.Assign(c.Context(), tid, req.CourseCode, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTeacherNotFound):
			return response.NotFound(c, "Teacher not found")
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		default:
			return response.InternalServerError(c, "Failed to assign supplementary")
		}
	}

	return response.SuccessWithMessage(c, "Supplementary assignment complete", result)
}

// Edit handles PUT /api/v1/supplementary/:usn/:code
func (h *SupplementaryHandler) Edit(c *fiber.Ctx) error {
	usn := c.Params("usn")
	code := c.Params("code")

	var req EditRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	rec, err := h.suppService.Edit(c.Context(), usn, code, req.TeacherTID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrTeacherNotFound):
			return response.NotFound(c, "Teacher not found")
		case errors.Is(err, services.ErrSupplementaryNotFound):
			return response.NotFound(c, "No supplementary assignment for this student and course")
		default:
			return response.InternalServerError(c, "Failed to edit supplementary")
		}
	}

	return response.Success(c, rec)
}

// Delete handles DELETE /api/v1/supplementary/:usn/:code
func (h *SupplementaryHandler) Delete(c *fiber.Ctx) error {
	usn := c.Params("usn")
	code := c.Params("code")

	removed, err := h.suppService.Delete(c.Context(), usn, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrSupplementaryNotFound):
			return response.NotFound(c, "No supplementary assignment for this student and course")
		default:
			return response.InternalServerError(c, "Failed to delete supplementary")
		}
	}

	return response.SuccessWithMessage(c, "Supplementary assignment removed", fiber.Map{
		"removed": removed,
	})
}

// List handles GET /api/v1/supplementary
func (h *SupplementaryHandler) List(c *fiber.Ctx) error {
	records, err := h.suppService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list supplementary assignments")
	}

	return response.Success(c, records)
}
