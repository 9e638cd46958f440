package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/services/scoring"
	"github.com/sahilchouksey/dpms-api/utils/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BandCountsCacheKey is the Redis key for the cached band-count
// aggregate. Every marks write invalidates it.
const BandCountsCacheKey = "dpms:band_counts"

// MarksService is the single write path for marks. It guarantees that
// total_score and category are recomputed from the raw fields inside
// the same transaction as every raw-field write, so no reader can
// observe one without the other.
type MarksService struct {
	db    *gorm.DB
	cache *cache.RedisCache // nil when Redis is not configured
}

// NewMarksService creates a new marks service
func NewMarksService(db *gorm.DB, c *cache.RedisCache) *MarksService {
	return &MarksService{
		db:    db,
		cache: c,
	}
}

// RawMarks holds the four raw inputs for a marks record
type RawMarks struct {
	IA1        int `json:"ia1"`
	IA2        int `json:"ia2"`
	IA3        int `json:"ia3"`
	Assignment int `json:"assignment"`
}

// RawMarksPatch is a partial update; nil fields keep their prior value
type RawMarksPatch struct {
	IA1        *int `json:"ia1"`
	IA2        *int `json:"ia2"`
	IA3        *int `json:"ia3"`
	Assignment *int `json:"assignment"`
}

// Record creates the marks record for (usn, courseCode). The course
// code is free text on purpose: deployments without a course registry
// record marks against bare codes. Returns ErrStudentNotFound for an
// unknown USN and ErrDuplicateMarks when the pair already has a record.
func (s *MarksService) Record(ctx context.Context, usn, courseCode string, raw RawMarks) (*model.Marks, error) {
	var rec model.Marks

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Where("usn = ?", usn).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to look up student: %w", err)
		}

		// Reject duplicates up front so the caller gets a clean error
		// instead of a constraint violation.
		var existing model.Marks
		err := tx.Where("student_id = ? AND course_code = ?", student.ID, courseCode).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateMarks
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing marks: %w", err)
		}

		total, category := scoring.Compute(raw.IA1, raw.IA2, raw.IA3, raw.Assignment)
		rec = model.Marks{
			StudentID:  student.ID,
			CourseCode: courseCode,
			IA1:        raw.IA1,
			IA2:        raw.IA2,
			IA3:        raw.IA3,
			Assignment: raw.Assignment,
			TotalScore: total,
			Category:   string(category),
		}

		if err := tx.Create(&rec).Error; err != nil {
			// A concurrent writer may have slipped in between the check
			// and the insert; the unique index catches it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMarks
			}
			return fmt.Errorf("failed to create marks: %w", err)
		}

		rec.Student = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBandCounts(ctx)
	return &rec, nil
}

// Update applies the provided raw fields to an existing marks record
// and unconditionally recomputes the derived fields. The row is locked
// for the duration of the transaction so two concurrent updates cannot
// interleave their read-modify-recompute-write sequences.
func (s *MarksService) Update(ctx context.Context, usn, courseCode string, patch RawMarksPatch) (*model.Marks, error) {
	var rec model.Marks

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Where("usn = ?", usn).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to look up student: %w", err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND course_code = ?", student.ID, courseCode).
			First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMarksNotFound
			}
			return fmt.Errorf("failed to lock marks row: %w", err)
		}

		if patch.IA1 != nil {
			rec.IA1 = *patch.IA1
		}
		if patch.IA2 != nil {
			rec.IA2 = *patch.IA2
		}
		if patch.IA3 != nil {
			rec.IA3 = *patch.IA3
		}
		if patch.Assignment != nil {
			rec.Assignment = *patch.Assignment
		}

		total, category := scoring.Compute(rec.IA1, rec.IA2, rec.IA3, rec.Assignment)
		rec.TotalScore = total
		rec.Category = string(category)

		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to update marks: %w", err)
		}

		rec.Student = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBandCounts(ctx)
	return &rec, nil
}

// Get returns the marks record for (usn, courseCode)
func (s *MarksService) Get(ctx context.Context, usn, courseCode string) (*model.Marks, error) {
	var student model.Student
	if err := s.db.WithContext(ctx).Where("usn = ?", usn).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}

	var rec model.Marks
	err := s.db.WithContext(ctx).Preload("Student").
		Where("student_id = ? AND course_code = ?", student.ID, courseCode).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarksNotFound
		}
		return nil, fmt.Errorf("failed to fetch marks: %w", err)
	}
	return &rec, nil
}

// Delete removes the marks record for (usn, courseCode). Supplementary
// assignments for the pair are left alone; remediation history outlives
// the marks that triggered it.
func (s *MarksService) Delete(ctx context.Context, usn, courseCode string) error {
	var student model.Student
	if err := s.db.WithContext(ctx).Where("usn = ?", usn).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to look up student: %w", err)
	}

	res := s.db.WithContext(ctx).
		Where("student_id = ? AND course_code = ?", student.ID, courseCode).
		Delete(&model.Marks{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete marks: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMarksNotFound
	}

	s.invalidateBandCounts(ctx)
	return nil
}

// ListByStudent returns all marks records for a student
func (s *MarksService) ListByStudent(ctx context.Context, usn string) ([]model.Marks, error) {
	var student model.Student
	if err := s.db.WithContext(ctx).Where("usn = ?", usn).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}

	var records []model.Marks
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", student.ID).
		Order("course_code").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}
	return records, nil
}

func (s *MarksService) invalidateBandCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, BandCountsCacheKey); err != nil {
		// Stale cache self-heals at TTL expiry; not worth failing the write.
		log.Println("Warning: failed to invalidate band counts cache:", err)
	}
}
