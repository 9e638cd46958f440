package teacher

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"github.com/sahilchouksey/dpms-api/utils/validation"
	"gorm.io/gorm"
)

// TeacherHandler handles teacher-related requests
type TeacherHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(db *gorm.DB) *TeacherHandler {
	return &TeacherHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateTeacherRequest represents the request body for creating a teacher.
// CourseCode and Credit support the flat schema where a teacher row is
// one teaching assignment; multi-course teachers use the teaches routes.
type CreateTeacherRequest struct {
	TID        string  `json:"tid" validate:"required,min=1,max=50"`
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	CourseCode *string `json:"course_code" validate:"omitempty,max=50"`
	Credit     *int    `json:"credit" validate:"omitempty,gte=0"`
}

// UpdateTeacherRequest represents the request body for updating a teacher
type UpdateTeacherRequest struct {
	Name       string  `json:"name" validate:"omitempty,min=2,max=255"`
	CourseCode *string `json:"course_code" validate:"omitempty,max=50"`
	Credit     *int    `json:"credit" validate:"omitempty,gte=0"`
}

// AssignCourseRequest represents the request body for a teaching assignment
type AssignCourseRequest struct {
	CourseCode string `json:"course_code" validate:"required,min=1,max=50"`
	Semester   *int   `json:"semester" validate:"omitempty,gte=1"`
	Section    string `json:"section" validate:"omitempty,max=20"`
}

// ListTeachers handles GET /api/v1/teachers
func (h *TeacherHandler) ListTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Teacher{})
	if search != "" {
		query = query.Where("name ILIKE ? OR tid ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count teachers")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var teachers []model.Teacher
	if err := query.Preload("Teaches").
		Order("tid").
		Limit(limit).
		Offset(offset).
		Find(&teachers).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch teachers")
	}

	return response.Paginated(c, teachers, pagination)
}

// GetTeacher handles GET /api/v1/teachers/:tid
func (h *TeacherHandler) GetTeacher(c *fiber.Ctx) error {
	tid := c.Params("tid")

	var teacher model.Teacher
	if err := h.db.Preload("Teaches").Where("tid = ?", tid).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	return response.Success(c, teacher)
}

// CreateTeacher handles POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *fiber.Ctx) error {
	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.TID = validation.SanitizeString(req.TID)
	req.Name = validation.SanitizeString(req.Name)

	var existing model.Teacher
	if err := h.db.Where("tid = ?", req.TID).First(&existing).Error; err == nil {
		return response.Conflict(c, "Teacher with this id already exists")
	}

	teacher := model.Teacher{
		TID:        req.TID,
		Name:       req.Name,
		CourseCode: req.CourseCode,
		Credit:     req.Credit,
	}
	if err := h.db.Create(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to create teacher")
	}

	return response.Created(c, teacher)
}

// UpdateTeacher handles PUT /api/v1/teachers/:tid
func (h *TeacherHandler) UpdateTeacher(c *fiber.Ctx) error {
	tid := c.Params("tid")

	var req UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var teacher model.Teacher
	if err := h.db.Where("tid = ?", tid).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if req.Name != "" {
		teacher.Name = validation.SanitizeString(req.Name)
	}
	if req.CourseCode != nil {
		teacher.CourseCode = req.CourseCode
	}
	if req.Credit != nil {
		teacher.Credit = req.Credit
	}

	if err := h.db.Save(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to update teacher")
	}

	return response.Success(c, teacher)
}

// DeleteTeacher handles DELETE /api/v1/teachers/:tid
func (h *TeacherHandler) DeleteTeacher(c *fiber.Ctx) error {
	tid := c.Params("tid")

	var teacher model.Teacher
	if err := h.db.Where("tid = ?", tid).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if err := h.db.Delete(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete teacher")
	}

	return response.SuccessWithMessage(c, "Teacher deleted", nil)
}

// AssignCourse handles POST /api/v1/teachers/:tid/courses
func (h *TeacherHandler) AssignCourse(c *fiber.Ctx) error {
	tid := c.Params("tid")

	var req AssignCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var teacher model.Teacher
	if err := h.db.Where("tid = ?", tid).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	// Sanitize before the duplicate check so a padded code is compared
	// against what would actually be stored.
	req.CourseCode = validation.SanitizeString(req.CourseCode)

	var existing model.Teaches
	if err := h.db.Where("teacher_id = ? AND course_code = ?", teacher.ID, req.CourseCode).
		First(&existing).Error; err == nil {
		return response.Conflict(c, "Teacher is already assigned to this course")
	}

	teaches := model.Teaches{
		TeacherID:  teacher.ID,
		CourseCode: req.CourseCode,
		Semester:   req.Semester,
		Section:    req.Section,
	}
	if err := h.db.Create(&teaches).Error; err != nil {
		return response.InternalServerError(c, "Failed to assign course")
	}

	return response.Created(c, teaches)
}

// UnassignCourse handles DELETE /api/v1/teachers/:tid/courses/:code
func (h *TeacherHandler) UnassignCourse(c *fiber.Ctx) error {
	tid := c.Params("tid")
	code := c.Params("code")

	var teacher model.Teacher
	if err := h.db.Where("tid = ?", tid).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	res := h.db.Where("teacher_id = ? AND course_code = ?", teacher.ID, code).
		Delete(&model.Teaches{})
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to remove assignment")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Teaching assignment not found")
	}

	return response.SuccessWithMessage(c, "Assignment removed", nil)
}
