package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/dpms-api/model"
)

func TestAssignSupplementaryIdempotent(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	svc := NewSupplementaryService(db)
	course := testCourseCode()
	teacher := createTeacher(t, db, "Prof. Hegde")

	// Two red students and one green in the same course.
	red1 := createStudent(t, db, "Ishan")
	red2 := createStudent(t, db, "Jaya")
	green := createStudent(t, db, "Kiran")
	mustRecord(t, marks, red1.USN, course, RawMarks{IA1: 5, IA2: 5, IA3: 5, Assignment: 2})
	mustRecord(t, marks, red2.USN, course, RawMarks{IA1: 3, IA2: 4, IA3: 5})
	mustRecord(t, marks, green.USN, course, RawMarks{IA1: 40, IA2: 40, IA3: 40, Assignment: 10})

	result, err := svc.Assign(context.Background(), teacher.TID, course, "below threshold")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if result.Eligible != 2 || result.Created != 2 {
		t.Errorf("first run = (eligible %d, created %d), want (2, 2)", result.Eligible, result.Created)
	}

	// Re-running with no intervening marks change creates nothing.
	result, err = svc.Assign(context.Background(), teacher.TID, course, "below threshold")
	if err != nil {
		t.Fatalf("second Assign failed: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("second run created = %d, want 0", result.Created)
	}

	var count int64
	db.Model(&model.Supplementary{}).Where("course_code = ?", course).Count(&count)
	if count != 2 {
		t.Errorf("stored assignments = %d, want 2", count)
	}
}

func TestAssignSupplementaryNoEligibleStudents(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	svc := NewSupplementaryService(db)
	course := testCourseCode()
	teacher := createTeacher(t, db, "Prof. Lobo")

	student := createStudent(t, db, "Meera")
	mustRecord(t, marks, student.USN, course, RawMarks{IA1: 50, IA2: 50, IA3: 50})

	result, err := svc.Assign(context.Background(), teacher.TID, course, "")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if result.Eligible != 0 || result.Created != 0 {
		t.Errorf("result = (eligible %d, created %d), want (0, 0)", result.Eligible, result.Created)
	}
}

func TestAssignSupplementaryUnknownTeacher(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSupplementaryService(db)

	_, err := svc.Assign(context.Background(), "NO-SUCH-TID", testCourseCode(), "")
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("err = %v, want ErrTeacherNotFound", err)
	}
}

func TestAssignSupplementaryUnknownCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSupplementaryService(db)
	teacher := createTeacher(t, db, "Prof. Nair")

	// Course code that no registry row, marks row or teaches row mentions.
	_, err := svc.Assign(context.Background(), teacher.TID, testCourseCode(), "")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestEditSupplementaryConsolidates(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	svc := NewSupplementaryService(db)
	course := testCourseCode()
	t1 := createTeacher(t, db, "Prof. Oak")
	t2 := createTeacher(t, db, "Prof. Pillai")
	t3 := createTeacher(t, db, "Prof. Qazi")

	student := createStudent(t, db, "Rhea")
	mustRecord(t, marks, student.USN, course, RawMarks{IA1: 2, IA2: 2, IA3: 2})

	// Two teachers assigned to the same (student, course).
	if _, err := svc.Assign(context.Background(), t1.TID, course, ""); err != nil {
		t.Fatalf("Assign t1 failed: %v", err)
	}
	if _, err := svc.Assign(context.Background(), t2.TID, course, ""); err != nil {
		t.Fatalf("Assign t2 failed: %v", err)
	}

	rec, err := svc.Edit(context.Background(), student.USN, course, t3.TID)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if rec.Teacher.TID != t3.TID {
		t.Errorf("edited record teacher = %q, want %q", rec.Teacher.TID, t3.TID)
	}

	// Edit addresses the (student, course) pair: all prior teacher rows
	// collapse into one record for the new teacher.
	var remaining []model.Supplementary
	db.Where("student_id = ? AND course_code = ?", student.ID, course).Find(&remaining)
	if len(remaining) != 1 {
		t.Fatalf("records after edit = %d, want 1", len(remaining))
	}
	if remaining[0].TeacherID != rec.TeacherID {
		t.Errorf("remaining record teacher id = %d, want %d", remaining[0].TeacherID, rec.TeacherID)
	}
}

func TestDeleteSupplementaryRemovesAllTeachers(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	svc := NewSupplementaryService(db)
	course := testCourseCode()
	t1 := createTeacher(t, db, "Prof. Rao")
	t2 := createTeacher(t, db, "Prof. Sen")

	student := createStudent(t, db, "Tara")
	mustRecord(t, marks, student.USN, course, RawMarks{})

	if _, err := svc.Assign(context.Background(), t1.TID, course, ""); err != nil {
		t.Fatalf("Assign t1 failed: %v", err)
	}
	if _, err := svc.Assign(context.Background(), t2.TID, course, ""); err != nil {
		t.Fatalf("Assign t2 failed: %v", err)
	}

	deleted, err := svc.Delete(context.Background(), student.USN, course)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	_, err = svc.Delete(context.Background(), student.USN, course)
	if !errors.Is(err, ErrSupplementaryNotFound) {
		t.Errorf("second delete err = %v, want ErrSupplementaryNotFound", err)
	}
}

func TestSupplementarySurvivesCategoryImprovement(t *testing.T) {
	db := setupTestDB(t)
	marks := NewMarksService(db, nil)
	svc := NewSupplementaryService(db)
	course := testCourseCode()
	teacher := createTeacher(t, db, "Prof. Umesh")

	student := createStudent(t, db, "Veda")
	mustRecord(t, marks, student.USN, course, RawMarks{IA1: 5, IA2: 5, IA3: 5})

	if _, err := svc.Assign(context.Background(), teacher.TID, course, ""); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// Student improves out of red; the assignment record stays.
	ia := 50
	if _, err := marks.Update(context.Background(), student.USN, course, RawMarksPatch{IA1: &ia, IA2: &ia, IA3: &ia}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var count int64
	db.Model(&model.Supplementary{}).Where("student_id = ? AND course_code = ?", student.ID, course).Count(&count)
	if count != 1 {
		t.Errorf("assignments after improvement = %d, want 1 (no auto-revoke)", count)
	}
}

func mustRecord(t *testing.T, svc *MarksService, usn, course string, raw RawMarks) {
	t.Helper()
	if _, err := svc.Record(context.Background(), usn, course, raw); err != nil {
		t.Fatalf("Record(%s, %s) failed: %v", usn, course, err)
	}
}
