package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/dpms-api/model"
)

func TestGetRedStudentsOnlyRedBand(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	reports := NewReportService(db, nil)
	course := testCourseCode()

	red := createStudent(t, db, "Hema")
	yellow := createStudent(t, db, "Ishan")
	green := createStudent(t, db, "Jaya")

	mustRecord(t, marks, red.USN, course, RawMarks{IA1: 5, IA2: 5, IA3: 5})
	mustRecord(t, marks, yellow.USN, course, RawMarks{IA1: 25, IA2: 25, IA3: 25})
	mustRecord(t, marks, green.USN, course, RawMarks{IA1: 30, IA2: 30, IA3: 30, Assignment: 15})

	rows, err := reports.GetRedStudents(context.Background(), course)
	if err != nil {
		t.Fatalf("GetRedStudents failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d red students, want 1", len(rows))
	}
	if rows[0].USN != red.USN {
		t.Errorf("red student = %q, want %q", rows[0].USN, red.USN)
	}
	if rows[0].TotalScore != 5.0 {
		t.Errorf("TotalScore = %v, want 5.0", rows[0].TotalScore)
	}
}

func TestGetBandCountsWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	reports := NewReportService(db, nil)
	course := testCourseCode()

	before, err := reports.GetBandCounts(context.Background())
	if err != nil {
		t.Fatalf("GetBandCounts failed: %v", err)
	}

	student := createStudent(t, db, "Kiran")
	mustRecord(t, marks, student.USN, course, RawMarks{IA1: 2, IA2: 2, IA3: 2})

	after, err := reports.GetBandCounts(context.Background())
	if err != nil {
		t.Fatalf("GetBandCounts failed: %v", err)
	}
	if after.Red != before.Red+1 {
		t.Errorf("red count = %d, want %d", after.Red, before.Red+1)
	}
}

func TestGetMonitorIncludesStudentsWithoutMarks(t *testing.T) {
	db := setupTestDB(t)
	reports := NewReportService(db, nil)

	student := createStudent(t, db, "Lina")

	rows, err := reports.GetMonitor(context.Background())
	if err != nil {
		t.Fatalf("GetMonitor failed: %v", err)
	}

	found := false
	for _, row := range rows {
		if row.USN != student.USN {
			continue
		}
		found = true
		if row.CourseCode != nil || row.TotalScore != nil || row.Category != nil {
			t.Errorf("markless student has non-nil marks columns: %+v", row)
		}
	}
	if !found {
		t.Errorf("student %s missing from monitor rows", student.USN)
	}
}

func TestGetMonitorShowsSupplementaryTeacher(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	supp := NewSupplementaryService(db)
	reports := NewReportService(db, nil)
	course := testCourseCode()

	student := createStudent(t, db, "Mohan")
	teacher := createTeacher(t, db, "Prof. Nanda")
	mustRecord(t, marks, student.USN, course, RawMarks{IA1: 3, IA2: 3, IA3: 3})

	if _, err := supp.Assign(context.Background(), teacher.TID, course, "low scores"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	rows, err := reports.GetMonitor(context.Background())
	if err != nil {
		t.Fatalf("GetMonitor failed: %v", err)
	}

	for _, row := range rows {
		if row.USN != student.USN {
			continue
		}
		if row.SuppTeacher == nil || *row.SuppTeacher != teacher.Name {
			t.Errorf("SuppTeacher = %v, want %q", row.SuppTeacher, teacher.Name)
		}
		return
	}
	t.Errorf("student %s missing from monitor rows", student.USN)
}

func TestGetTeacherRedReportSpansTeachesRows(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	reports := NewReportService(db, nil)
	courseA := testCourseCode()
	courseB := testCourseCode()

	teacher := createTeacher(t, db, "Prof. Omkar")
	for _, code := range []string{courseA, courseB} {
		teaches := model.Teaches{TeacherID: teacher.ID, CourseCode: code}
		if err := db.Create(&teaches).Error; err != nil {
			t.Fatalf("Failed to create teaches row: %v", err)
		}
		t.Cleanup(func() {
			db.Unscoped().Delete(&teaches)
		})
	}

	redA := createStudent(t, db, "Pooja")
	redB := createStudent(t, db, "Qadir")
	mustRecord(t, marks, redA.USN, courseA, RawMarks{IA1: 4, IA2: 4, IA3: 4})
	mustRecord(t, marks, redB.USN, courseB, RawMarks{IA1: 6, IA2: 6, IA3: 6})

	rows, err := reports.GetTeacherRedReport(context.Background(), teacher.TID)
	if err != nil {
		t.Fatalf("GetTeacherRedReport failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (one per course)", len(rows))
	}
}

func TestGetTeacherRedReportUnknownTeacher(t *testing.T) {
	db := setupTestDB(t)
	reports := NewReportService(db, nil)

	_, err := reports.GetTeacherRedReport(context.Background(), "NO-SUCH-TID")
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("err = %v, want ErrTeacherNotFound", err)
	}
}
