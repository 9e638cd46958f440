package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/dpms-api/database"
	"github.com/sahilchouksey/dpms-api/handlers"
	auth_handlers "github.com/sahilchouksey/dpms-api/handlers/auth"
	course_handlers "github.com/sahilchouksey/dpms-api/handlers/course"
	marks_handlers "github.com/sahilchouksey/dpms-api/handlers/marks"
	report_handlers "github.com/sahilchouksey/dpms-api/handlers/report"
	student_handlers "github.com/sahilchouksey/dpms-api/handlers/student"
	supp_handlers "github.com/sahilchouksey/dpms-api/handlers/supplementary"
	teacher_handlers "github.com/sahilchouksey/dpms-api/handlers/teacher"
	"github.com/sahilchouksey/dpms-api/services"
	"github.com/sahilchouksey/dpms-api/utils/auth"
	"github.com/sahilchouksey/dpms-api/utils/cache"
	"github.com/sahilchouksey/dpms-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage, redisCache *cache.RedisCache) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "dpms-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: 24 * time.Hour, // Access token expires in 24 hours
		Issuer: jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize services
	marksService := services.NewMarksService(db, redisCache)
	suppService := services.NewSupplementaryService(db)
	reportService := services.NewReportService(db, redisCache)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager)
	studentHandler := student_handlers.NewStudentHandler(db)
	teacherHandler := teacher_handlers.NewTeacherHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	marksHandler := marks_handlers.NewMarksHandler(marksService)
	suppHandler := supp_handlers.NewSupplementaryHandler(suppService)
	reportHandler := report_handlers.NewReportHandler(reportService)

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Students routes
	students := api.Group("/students")
	students.Get("/", studentHandler.ListStudents)                                          // Public: List students (paginated)
	students.Get("/:usn", studentHandler.GetStudent)                                        // Public: Get student by USN
	students.Post("/", authMiddleware.Required(), studentHandler.CreateStudent)             // Protected: Create student
	students.Put("/:usn", authMiddleware.Required(), studentHandler.UpdateStudent)          // Protected: Update student
	students.Delete("/:usn", authMiddleware.Required(), middleware.RequireAdmin(), studentHandler.DeleteStudent) // Admin: Delete student (cascades)

	// Teachers routes
	teachers := api.Group("/teachers")
	teachers.Get("/", teacherHandler.ListTeachers)                                 // Public: List teachers
	teachers.Get("/:tid", teacherHandler.GetTeacher)                               // Public: Get teacher by TID
	teachers.Post("/", authMiddleware.Required(), teacherHandler.CreateTeacher)    // Protected: Create teacher
	teachers.Put("/:tid", authMiddleware.Required(), teacherHandler.UpdateTeacher) // Protected: Update teacher
	teachers.Delete("/:tid", authMiddleware.Required(), middleware.RequireAdmin(), teacherHandler.DeleteTeacher) // Admin: Delete teacher
	teachers.Post("/:tid/courses", authMiddleware.Required(), teacherHandler.AssignCourse)          // Protected: Assign course to teacher
	teachers.Delete("/:tid/courses/:code", authMiddleware.Required(), teacherHandler.UnassignCourse) // Protected: Remove course from teacher

	// Courses routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)                                    // Public: List courses
	courses.Get("/:code", courseHandler.GetCourse)                                 // Public: Get course by code
	courses.Post("/", authMiddleware.Required(), courseHandler.CreateCourse)       // Protected: Create course
	courses.Put("/:code", authMiddleware.Required(), courseHandler.UpdateCourse)   // Protected: Update course
	courses.Delete("/:code", authMiddleware.Required(), middleware.RequireAdmin(), courseHandler.DeleteCourse) // Admin: Delete course

	// Marks routes. All writes go through the marks service so the
	// derived fields stay consistent with the raw ones.
	marks := api.Group("/marks")
	marks.Post("/", authMiddleware.Required(), marksHandler.RecordMarks)          // Protected: Record marks
	marks.Get("/:usn", marksHandler.ListMarksByStudent)                           // Public: All marks for a student
	marks.Get("/:usn/:code", marksHandler.GetMarks)                               // Public: Marks for a student in a course
	marks.Put("/:usn/:code", authMiddleware.Required(), marksHandler.UpdateMarks) // Protected: Update marks (recomputes)
	marks.Delete("/:usn/:code", authMiddleware.Required(), marksHandler.DeleteMarks) // Protected: Delete marks

	// Supplementary routes
	supp := api.Group("/supplementary", authMiddleware.Required())
	supp.Get("/", suppHandler.List)                   // Protected: List assignments
	supp.Post("/assign", suppHandler.Assign)          // Protected: Bulk-assign remedial teacher for a course
	supp.Put("/:usn/:code", suppHandler.Edit)         // Protected: Reassign remedial teacher
	supp.Delete("/:usn/:code", suppHandler.Delete)    // Protected: Remove assignments

	// Report routes
	reports := api.Group("/reports")
	reports.Get("/monitor", reportHandler.Monitor)         // Public: Monitor dashboard rows
	reports.Get("/band-counts", reportHandler.BandCounts)  // Public: Per-band record counts
	reports.Get("/red/:code", reportHandler.RedStudents)   // Public: Red students in a course
	reports.Get("/teacher-red", authMiddleware.Required(), reportHandler.TeacherRedReport) // Protected: Red students across the teacher's courses
}
