package marks

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/services"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"github.com/sahilchouksey/dpms-api/utils/validation"
)

// MarksHandler handles marks entry and retrieval requests
type MarksHandler struct {
	marksService *services.MarksService
	validator    *validation.Validator
}

// NewMarksHandler creates a new marks handler
func NewMarksHandler(marksService *services.MarksService) *MarksHandler {
	return &MarksHandler{
		marksService: marksService,
		validator:    validation.NewValidator(),
	}
}

// RecordMarksRequest represents the request body for recording marks.
// The score fields are interface{} on purpose: entry forms submit
// whatever the teacher typed, and anything non-numeric coerces to 0
// rather than rejecting the whole submission.
type RecordMarksRequest struct {
	USN        string      `json:"usn" validate:"required,min=1,max=50"`
	CourseCode string      `json:"course_code" validate:"required,min=1,max=50"`
	IA1        interface{} `json:"ia1"`
	IA2        interface{} `json:"ia2"`
	IA3        interface{} `json:"ia3"`
	Assignment interface{} `json:"assignment"`
}

// RecordMarks handles POST /api/v1/marks
func (h *MarksHandler) RecordMarks(c *fiber.Ctx) error {
	var req RecordMarksRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	raw := services.RawMarks{
		IA1:        validation.CoerceScore(req.IA1),
		IA2:        validation.CoerceScore(req.IA2),
		IA3:        validation.CoerceScore(req.IA3),
		Assignment: validation.CoerceScore(req.Assignment),
	}

	rec, err := h.marksService.Record(c.Context(), req.USN, req.CourseCode, raw)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrDuplicateMarks):
			return response.Conflict(c, "Marks already recorded for this student and course")
		default:
			return response.InternalServerError(c, "Failed to record marks")
		}
	}

	return response.Created(c, rec)
}

// UpdateMarks handles PUT /api/v1/marks/:usn/:code
//
// The body is decoded as a free-form map so an absent field keeps its
// stored value while a present-but-garbage field coerces to 0. A typed
// struct cannot tell those apart.
func (h *MarksHandler) UpdateMarks(c *fiber.Ctx) error {
	usn := c.Params("usn")
	code := c.Params("code")

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(body) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	var patch services.RawMarksPatch
	if v, ok := body["ia1"]; ok {
		n := validation.CoerceScore(v)
		patch.IA1 = &n
	}
	if v, ok := body["ia2"]; ok {
		n := validation.CoerceScore(v)
		patch.IA2 = &n
	}
	if v, ok := body["ia3"]; ok {
		n := validation.CoerceScore(v)
		patch.IA3 = &n
	}
	if v, ok := body["assignment"]; ok {
		n := validation.CoerceScore(v)
		patch.Assignment = &n
	}

	rec, err := h.marksService.Update(c.Context(), usn, code, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrMarksNotFound):
			return response.NotFound(c, "Marks not found for this student and course")
		default:
			return response.InternalServerError(c, "Failed to update marks")
		}
	}

	return response.Success(c, rec)
}

// GetMarks handles GET /api/v1/marks/:usn/:code
func (h *MarksHandler) GetMarks(c *fiber.Ctx) error {
	usn := c.Params("usn")
	code := c.Params("code")

	rec, err := h.marksService.Get(c.Context(), usn, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrMarksNotFound):
			return response.NotFound(c, "Marks not found for this student and course")
		default:
			return response.InternalServerError(c, "Failed to fetch marks")
		}
	}

	return response.Success(c, rec)
}

// DeleteMarks handles DELETE /api/v1/marks/:usn/:code
func (h *MarksHandler) DeleteMarks(c *fiber.Ctx) error {
	usn := c.Params("usn")
	code := c.Params("code")

	if err := h.marksService.Delete(c.Context(), usn, code); err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrMarksNotFound):
			return response.NotFound(c, "Marks not found for this student and course")
		default:
			return response.InternalServerError(c, "Failed to delete marks")
		}
	}

	return response.SuccessWithMessage(c, "Marks deleted", nil)
}

// ListMarksByStudent handles GET /api/v1/marks/:usn
func (h *MarksHandler) ListMarksByStudent(c *fiber.Ctx) error {
	usn := c.Params("usn")

	records, err := h.marksService.ListByStudent(c.Context(), usn)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to list marks")
	}

	return response.Success(c, records)
}
