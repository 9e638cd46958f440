package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/services/scoring"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB connects to the Postgres pointed at by the DB_* env vars.
// These tests exercise real transactions, row locks and cascades, so
// they only run when RUN_INTEGRATION_TESTS=true.
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

	err = db.AutoMigrate(
		&model.Student{},
		&model.Teacher{},
		&model.Course{},
		&model.Teaches{},
		&model.Marks{},
		&model.Supplementary{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// createStudent inserts a student with a unique USN and registers
// cleanup. Cascades remove the student's marks and assignments.
func createStudent(t *testing.T, db *gorm.DB, name string) *model.Student {
	t.Helper()

	student := &model.Student{
		USN:  "TEST" + uuid.New().String()[:8],
		Name: name,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Delete(&model.Student{}, student.ID)
	})
	return student
}

func createTeacher(t *testing.T, db *gorm.DB, name string) *model.Teacher {
	t.Helper()

	teacher := &model.Teacher{
		TID:  "T" + uuid.New().String()[:8],
		Name: name,
	}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("Failed to create teacher: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Delete(&model.Teacher{}, teacher.ID)
	})
	return teacher
}

// testCourseCode makes a unique course code so parallel runs don't
// see each other's marks.
func testCourseCode() string {
	return "C" + uuid.New().String()[:8]
}

func TestRecordMarksComputesDerivedFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Asha")
	course := testCourseCode()

	rec, err := svc.Record(context.Background(), student.USN, course, RawMarks{
		IA1: 5, IA2: 5, IA3: 5, Assignment: 2,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.TotalScore != 7.0 {
		t.Errorf("TotalScore = %v, want 7.0", rec.TotalScore)
	}
	if rec.Category != "red" {
		t.Errorf("Category = %q, want red", rec.Category)
	}

	// The persisted row must carry the same derived state.
	var persisted model.Marks
	if err := db.Where("student_id = ? AND course_code = ?", student.ID, course).First(&persisted).Error; err != nil {
		t.Fatalf("Failed to read back marks: %v", err)
	}
	if persisted.TotalScore != 7.0 || persisted.Category != "red" {
		t.Errorf("persisted derived state = (%v, %q), want (7.0, red)", persisted.TotalScore, persisted.Category)
	}
}

func TestRecordMarksBoundaryIsYellow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Ben")

	rec, err := svc.Record(context.Background(), student.USN, testCourseCode(), RawMarks{
		IA1: 20, IA2: 20, IA3: 20, Assignment: 0,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.TotalScore != 20.0 || rec.Category != "yellow" {
		t.Errorf("derived = (%v, %q), want (20.0, yellow)", rec.TotalScore, rec.Category)
	}
}

func TestRecordMarksUnknownStudent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)

	_, err := svc.Record(context.Background(), "NO-SUCH-USN", testCourseCode(), RawMarks{})
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestRecordMarksDuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Chitra")
	course := testCourseCode()

	if _, err := svc.Record(context.Background(), student.USN, course, RawMarks{IA1: 10, IA2: 10, IA3: 10}); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}

	_, err := svc.Record(context.Background(), student.USN, course, RawMarks{IA1: 99, IA2: 99, IA3: 99})
	if !errors.Is(err, ErrDuplicateMarks) {
		t.Fatalf("err = %v, want ErrDuplicateMarks", err)
	}

	// The failed call must not have touched the stored record.
	var persisted model.Marks
	if err := db.Where("student_id = ? AND course_code = ?", student.ID, course).First(&persisted).Error; err != nil {
		t.Fatalf("Failed to read back marks: %v", err)
	}
	if persisted.IA1 != 10 {
		t.Errorf("IA1 = %d after rejected duplicate, want 10", persisted.IA1)
	}
}

func TestUpdateMarksRecomputesDerivedFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Divya")
	course := testCourseCode()

	if _, err := svc.Record(context.Background(), student.USN, course, RawMarks{IA1: 5, IA2: 5, IA3: 5, Assignment: 2}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// Partial update: only the assignment changes, IAs keep their values.
	assignment := 35
	rec, err := svc.Update(context.Background(), student.USN, course, RawMarksPatch{Assignment: &assignment})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rec.IA1 != 5 || rec.IA2 != 5 || rec.IA3 != 5 {
		t.Errorf("IAs changed on partial update: (%d,%d,%d)", rec.IA1, rec.IA2, rec.IA3)
	}
	if rec.TotalScore != 40.0 {
		t.Errorf("TotalScore = %v, want 40.0", rec.TotalScore)
	}
	if rec.Category != "green" {
		t.Errorf("Category = %q, want green (40.0 is green)", rec.Category)
	}
}

func TestUpdateMarksConcurrentWritersNoLostUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Harsha")
	course := testCourseCode()

	if _, err := svc.Record(context.Background(), student.USN, course, RawMarks{IA1: 5, IA2: 5, IA3: 5, Assignment: 0}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// Two writers patch different raw fields of the same row at the
	// same time. The row lock serializes the read-modify-recompute-write
	// sequences, so both patches must land and the derived fields must
	// match a recompute of the final raw snapshot.
	ia1 := 30
	assignment := 10
	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Update(context.Background(), student.USN, course, RawMarksPatch{IA1: &ia1})
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.Update(context.Background(), student.USN, course, RawMarksPatch{Assignment: &assignment})
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Update failed: %v", err)
		}
	}

	var persisted model.Marks
	if err := db.Where("student_id = ? AND course_code = ?", student.ID, course).First(&persisted).Error; err != nil {
		t.Fatalf("Failed to read back marks: %v", err)
	}
	if persisted.IA1 != 30 || persisted.Assignment != 10 {
		t.Errorf("lost update: raw fields = (ia1=%d, assignment=%d), want (30, 10)",
			persisted.IA1, persisted.Assignment)
	}
	wantTotal, wantCategory := scoring.Compute(persisted.IA1, persisted.IA2, persisted.IA3, persisted.Assignment)
	if persisted.TotalScore != wantTotal || persisted.Category != string(wantCategory) {
		t.Errorf("derived = (%v, %q), want (%v, %q) for the final raw snapshot",
			persisted.TotalScore, persisted.Category, wantTotal, wantCategory)
	}
}

func TestUpdateMarksNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Esha")

	ia1 := 10
	_, err := svc.Update(context.Background(), student.USN, testCourseCode(), RawMarksPatch{IA1: &ia1})
	if !errors.Is(err, ErrMarksNotFound) {
		t.Errorf("err = %v, want ErrMarksNotFound", err)
	}
}

func TestDeleteMarks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Gita")
	course := testCourseCode()

	if _, err := svc.Record(context.Background(), student.USN, course, RawMarks{IA1: 10, IA2: 10, IA3: 10}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := svc.Delete(context.Background(), student.USN, course); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), student.USN, course); !errors.Is(err, ErrMarksNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrMarksNotFound", err)
	}

	if err := svc.Delete(context.Background(), student.USN, course); !errors.Is(err, ErrMarksNotFound) {
		t.Errorf("second Delete: err = %v, want ErrMarksNotFound", err)
	}
}

func TestDeleteStudentCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMarksService(db, nil)
	student := createStudent(t, db, "Farid")
	teacher := createTeacher(t, db, "Prof. Gowda")
	course := testCourseCode()

	if _, err := svc.Record(context.Background(), student.USN, course, RawMarks{IA1: 1, IA2: 1, IA3: 1}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	supp := NewSupplementaryService(db)
	if _, err := supp.Assign(context.Background(), teacher.TID, course, ""); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := db.Delete(&model.Student{}, student.ID).Error; err != nil {
		t.Fatalf("Failed to delete student: %v", err)
	}

	var marksCount, suppCount int64
	db.Model(&model.Marks{}).Where("student_id = ?", student.ID).Count(&marksCount)
	db.Model(&model.Supplementary{}).Where("student_id = ?", student.ID).Count(&suppCount)
	if marksCount != 0 {
		t.Errorf("marks rows after student delete = %d, want 0", marksCount)
	}
	if suppCount != 0 {
		t.Errorf("supplementary rows after student delete = %d, want 0", suppCount)
	}
}
