package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/services/scoring"
	"gorm.io/gorm"
)

// SupplementaryService assigns remedial instructors to red-band
// students and manages the resulting records.
type SupplementaryService struct {
	db *gorm.DB
}

// NewSupplementaryService creates a new supplementary service
func NewSupplementaryService(db *gorm.DB) *SupplementaryService {
	return &SupplementaryService{
		db: db,
	}
}

// AssignResult reports one assignment run. Created is zero when the
// run found nothing new to do — either no eligible students or every
// eligible student already had this teacher assigned.
type AssignResult struct {
	CourseCode string `json:"course_code"`
	TeacherTID string `json:"teacher_tid"`
	Eligible   int    `json:"eligible"`
	Created    int    `json:"created"`
}

// Assign makes the teacher the remedial instructor for every student
// whose current marks category in the course is red. The eligible set
// is queried live inside the transaction, never cached. Re-running is
// safe: existing (student, course, teacher) triples are skipped and
// only newly created records are counted.
func (s *SupplementaryService) Assign(ctx context.Context, tid, courseCode, reason string) (*AssignResult, error) {
	result := &AssignResult{CourseCode: courseCode, TeacherTID: tid}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher model.Teacher
		if err := tx.Where("tid = ?", tid).First(&teacher).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeacherNotFound
			}
			return fmt.Errorf("failed to look up teacher: %w", err)
		}

		if err := resolveCourseCode(tx, courseCode); err != nil {
			return err
		}

		// Live query of currently-red students in the course.
		var eligible []model.Marks
		if err := tx.Where("course_code = ? AND category = ?", courseCode, string(scoring.CategoryRed)).
			Find(&eligible).Error; err != nil {
			return fmt.Errorf("failed to query red students: %w", err)
		}
		result.Eligible = len(eligible)
		if len(eligible) == 0 {
			return nil
		}

		for _, m := range eligible {
			var existing model.Supplementary
			err := tx.Where("student_id = ? AND course_code = ? AND teacher_id = ?",
				m.StudentID, courseCode, teacher.ID).First(&existing).Error
			if err == nil {
				continue // already assigned
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check existing assignment: %w", err)
			}

			supp := model.Supplementary{
				StudentID:  m.StudentID,
				CourseCode: courseCode,
				TeacherID:  teacher.ID,
				Reason:     reason,
			}
			if err := tx.Create(&supp).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return fmt.Errorf("failed to create assignment: %w", err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Edit reassigns the remedial instructor for (usn, courseCode). The
// pair may have records for several teachers; they are consolidated
// into a single record for the new teacher.
func (s *SupplementaryService) Edit(ctx context.Context, usn, courseCode, newTID string) (*model.Supplementary, error) {
	var rec model.Supplementary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Where("usn = ?", usn).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to look up student: %w", err)
		}

		var teacher model.Teacher
		if err := tx.Where("tid = ?", newTID).First(&teacher).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeacherNotFound
			}
			return fmt.Errorf("failed to look up teacher: %w", err)
		}

		var existing []model.Supplementary
		if err := tx.Where("student_id = ? AND course_code = ?", student.ID, courseCode).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to fetch assignments: %w", err)
		}
		if len(existing) == 0 {
			return ErrSupplementaryNotFound
		}

		if err := tx.Where("student_id = ? AND course_code = ?", student.ID, courseCode).
			Delete(&model.Supplementary{}).Error; err != nil {
			return fmt.Errorf("failed to clear prior assignments: %w", err)
		}

		rec = model.Supplementary{
			StudentID:  student.ID,
			CourseCode: courseCode,
			TeacherID:  teacher.ID,
			Reason:     existing[0].Reason,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		rec.Student = student
		rec.Teacher = teacher
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes every supplementary record for (usn, courseCode),
// across all teachers.
func (s *SupplementaryService) Delete(ctx context.Context, usn, courseCode string) (int64, error) {
	var student model.Student
	if err := s.db.WithContext(ctx).Where("usn = ?", usn).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to look up student: %w", err)
	}

	res := s.db.WithContext(ctx).
		Where("student_id = ? AND course_code = ?", student.ID, courseCode).
		Delete(&model.Supplementary{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete assignments: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrSupplementaryNotFound
	}
	return res.RowsAffected, nil
}

// List returns all supplementary records with student and teacher
// preloaded
func (s *SupplementaryService) List(ctx context.Context) ([]model.Supplementary, error) {
	var records []model.Supplementary
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Order("course_code").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return records, nil
}

// resolveCourseCode checks a course code against the registry when one
// is populated. Deployments without a Course table still reference
// courses by bare code, so a code also counts as known when marks or
// teaching assignments mention it.
func resolveCourseCode(tx *gorm.DB, courseCode string) error {
	var count int64
	if err := tx.Model(&model.Course{}).Where("code = ?", courseCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check course registry: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := tx.Model(&model.Marks{}).Where("course_code = ?", courseCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check marks for course: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := tx.Model(&model.Teaches{}).Where("course_code = ?", courseCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check teaching assignments for course: %w", err)
	}
	if count > 0 {
		return nil
	}

	return ErrCourseNotFound
}
