package student

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/utils/response"
	"github.com/sahilchouksey/dpms-api/utils/validation"
	"gorm.io/gorm"
)

// StudentHandler handles student-related requests
type StudentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateStudentRequest represents the request body for registering a student
type CreateStudentRequest struct {
	USN      string `json:"usn" validate:"required,min=2,max=50"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Semester *int   `json:"semester" validate:"omitempty,gte=1"`
	Section  string `json:"section" validate:"omitempty,max=20"`
}

// UpdateStudentRequest represents the request body for updating a student
type UpdateStudentRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
	Semester *int   `json:"semester" validate:"omitempty,gte=1"`
	Section  *string `json:"section" validate:"omitempty,max=20"`
}

// ListStudents handles GET /api/v1/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	// Parse query parameters
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")
	section := c.Query("section", "")

	// Build query
	query := h.db.Model(&model.Student{})

	// Apply filters
	if search != "" {
		query = query.Where("name ILIKE ? OR usn ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if section != "" {
		query = query.Where("section = ?", section)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	// Calculate pagination
	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var students []model.Student
	if err := query.Order("usn").
		Limit(limit).
		Offset(offset).
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, pagination)
}

// GetStudent handles GET /api/v1/students/:usn
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	usn := c.Params("usn")

	var student model.Student
	if err := h.db.Preload("Marks").Where("usn = ?", usn).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// CreateStudent handles POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.USN = validation.SanitizeString(req.USN)
	req.Name = validation.SanitizeString(req.Name)

	// Check if USN is already registered
	var existing model.Student
	if err := h.db.Where("usn = ?", req.USN).First(&existing).Error; err == nil {
		return response.Conflict(c, "Student with this USN already exists")
	}

	student := model.Student{
		USN:      req.USN,
		Name:     req.Name,
		Semester: req.Semester,
		Section:  req.Section,
	}
	if err := h.db.Create(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	return response.Created(c, student)
}

// UpdateStudent handles PUT /api/v1/students/:usn
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	usn := c.Params("usn")

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.Student
	if err := h.db.Where("usn = ?", usn).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	// Update fields if provided
	if req.Name != "" {
		student.Name = validation.SanitizeString(req.Name)
	}
	if req.Semester != nil {
		student.Semester = req.Semester
	}
	if req.Section != nil {
		student.Section = *req.Section
	}

	if err := h.db.Save(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	return response.Success(c, student)
}

// DeleteStudent handles DELETE /api/v1/students/:usn. Marks and
// supplementary records for the student are removed by the cascade.
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	usn := c.Params("usn")

	var student model.Student
	if err := h.db.Where("usn = ?", usn).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if err := h.db.Delete(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}

	return response.SuccessWithMessage(c, "Student deleted", nil)
}
