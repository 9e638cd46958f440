package teacher

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sahilchouksey/dpms-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host,
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&model.Teacher{}, &model.Teaches{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func setupTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	h := NewTeacherHandler(db)
	app.Post("/teachers/:tid/courses", h.AssignCourse)
	return app
}

func createTestTeacher(t *testing.T, db *gorm.DB) *model.Teacher {
	t.Helper()

	teacher := &model.Teacher{
		TID:  "T" + uuid.New().String()[:8],
		Name: "Prof. Rao",
	}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("Failed to create teacher: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Delete(&model.Teacher{}, teacher.ID)
	})
	return teacher
}

func postAssign(t *testing.T, app *fiber.App, tid, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/teachers/"+tid+"/courses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestAssignCourseStoresTrimmedCode(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(db)
	teacher := createTestTeacher(t, db)
	code := "C" + uuid.New().String()[:8]

	resp := postAssign(t, app, teacher.TID, fmt.Sprintf(`{"course_code": "  %s  "}`, code))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var teaches model.Teaches
	if err := db.Where("teacher_id = ? AND course_code = ?", teacher.ID, code).First(&teaches).Error; err != nil {
		t.Errorf("no teaches row with trimmed code %q: %v", code, err)
	}
}

func TestAssignCoursePaddedDuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(db)
	teacher := createTestTeacher(t, db)
	code := "C" + uuid.New().String()[:8]

	resp := postAssign(t, app, teacher.TID, fmt.Sprintf(`{"course_code": %q}`, code))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first assignment: status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	// The padded code trims to the same assignment, so the duplicate
	// check must catch it instead of the unique index.
	resp = postAssign(t, app, teacher.TID, fmt.Sprintf(`{"course_code": "  %s"}`, code))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("padded duplicate: status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var count int64
	db.Model(&model.Teaches{}).Where("teacher_id = ?", teacher.ID).Count(&count)
	if count != 1 {
		t.Errorf("teaches rows = %d, want 1", count)
	}
}
