package course

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"github.com/sahilchouksey/dpms-api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler handles course-registry requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Code     string `json:"code" validate:"required,min=1,max=50"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Credit   int    `json:"credit" validate:"omitempty,gte=0"`
	Semester *int   `json:"semester" validate:"omitempty,gte=1"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
	Credit   *int   `json:"credit" validate:"omitempty,gte=0"`
	Semester *int   `json:"semester" validate:"omitempty,gte=1"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Course{})
	if search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Order("code").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:code
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	code := c.Params("code")

	var course model.Course
	if err := h.db.Where("code = ?", code).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Code = validation.SanitizeString(req.Code)
	req.Name = validation.SanitizeString(req.Name)

	var existing model.Course
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "Course with this code already exists")
	}

	course := model.Course{
		Code:     req.Code,
		Name:     req.Name,
		Credit:   req.Credit,
		Semester: req.Semester,
	}
	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:code
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	code := c.Params("code")

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var course model.Course
	if err := h.db.Where("code = ?", code).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if req.Name != "" {
		course.Name = validation.SanitizeString(req.Name)
	}
	if req.Credit != nil {
		course.Credit = *req.Credit
	}
	if req.Semester != nil {
		course.Semester = req.Semester
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// DeleteCourse handles DELETE /api/v1/courses/:code
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	code := c.Params("code")

	var course model.Course
	if err := h.db.Where("code = ?", code).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted", nil)
}
