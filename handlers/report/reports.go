package report

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/services"
	"github.com/sahilchouksey/dpms-api/utils/middleware"
	"github.com/sahilchouksey/dpms-api/utils/response"
)

// ReportHandler handles the read-only reporting endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Monitor handles GET /api/v1/reports/monitor
func (h *ReportHandler) Monitor(c *fiber.Ctx) error {
	rows, err := h.reportService.GetMonitor(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build monitor report")
	}

	return response.Success(c, rows)
}

// BandCounts handles GET /api/v1/reports/band-counts
func (h *ReportHandler) BandCounts(c *fiber.Ctx) error {
	counts, err := h.reportService.GetBandCounts(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute band counts")
	}

	return response.Success(c, counts)
}

// RedStudents handles GET /api/v1/reports/red/:code
func (h *ReportHandler) RedStudents(c *fiber.Ctx) error {
	code := c.Params("code")

	rows, err := h.reportService.GetRedStudents(c.Context(), code)
	if err != nil {
		return response.InternalServerError(c, "Failed to query red students")
	}

	return response.Success(c, rows)
}

// TeacherRedReport handles GET /api/v1/reports/teacher-red. The TID of
// the logged-in teacher is used unless an explicit ?tid= overrides it.
func (h *ReportHandler) TeacherRedReport(c *fiber.Ctx) error {
	tid := c.Query("tid", "")
	if tid == "" {
		tid = middleware.CurrentTeacherTID(c)
	}
	if tid == "" {
		return response.BadRequest(c, "No teacher TID provided and none linked to this account")
	}

	rows, err := h.reportService.GetTeacherRedReport(c.Context(), tid)
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to build teacher report")
	}

	return response.Success(c, rows)
}
