package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sahilchouksey/dpms-api/model"
	"github.com/sahilchouksey/dpms-api/services/scoring"
	"github.com/sahilchouksey/dpms-api/utils/cache"
	"gorm.io/gorm"
)

// bandCountsTTL bounds staleness when an invalidation is missed.
const bandCountsTTL = 60 * time.Second

// ReportService serves the read-only aggregations: the monitor
// dashboard, band counts and red-band listings.
type ReportService struct {
	db    *gorm.DB
	cache *cache.RedisCache // nil when Redis is not configured
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB, c *cache.RedisCache) *ReportService {
	return &ReportService{
		db:    db,
		cache: c,
	}
}

// BandCounts holds the number of marks records in each band
type BandCounts struct {
	Red    int64 `json:"red"`
	Yellow int64 `json:"yellow"`
	Green  int64 `json:"green"`
}

// GetBandCounts returns the per-band record counts across all marks.
// Served from Redis when available; marks writes invalidate the key.
func (s *ReportService) GetBandCounts(ctx context.Context) (*BandCounts, error) {
	if s.cache != nil {
		var cached BandCounts
		if err := s.cache.GetJSON(ctx, BandCountsCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrNotFound) {
			log.Println("Warning: band counts cache read failed:", err)
		}
	}

	counts := &BandCounts{}
	if err := s.db.WithContext(ctx).Model(&model.Marks{}).
		Where("category = ?", string(scoring.CategoryRed)).
		Count(&counts.Red).Error; err != nil {
		return nil, fmt.Errorf("failed to count red band: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Marks{}).
		Where("category = ?", string(scoring.CategoryYellow)).
		Count(&counts.Yellow).Error; err != nil {
		return nil, fmt.Errorf("failed to count yellow band: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Marks{}).
		Where("category = ?", string(scoring.CategoryGreen)).
		Count(&counts.Green).Error; err != nil {
		return nil, fmt.Errorf("failed to count green band: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, BandCountsCacheKey, counts, bandCountsTTL); err != nil {
			log.Println("Warning: band counts cache write failed:", err)
		}
	}
	return counts, nil
}

// RedStudentRow is one at-risk student in a course
type RedStudentRow struct {
	USN        string  `json:"usn"`
	Name       string  `json:"name"`
	CourseCode string  `json:"course_code"`
	TotalScore float64 `json:"total_score"`
}

// GetRedStudents lists the students whose current category in the
// course is red
func (s *ReportService) GetRedStudents(ctx context.Context, courseCode string) ([]RedStudentRow, error) {
	var rows []RedStudentRow
	err := s.db.WithContext(ctx).Model(&model.Marks{}).
		Select("students.usn, students.name, marks.course_code, marks.total_score").
		Joins("JOIN students ON students.id = marks.student_id").
		Where("marks.course_code = ? AND marks.category = ?", courseCode, string(scoring.CategoryRed)).
		Order("marks.total_score").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query red students: %w", err)
	}
	return rows, nil
}

// MonitorRow is one line of the monitor dashboard: a student, their
// marks in a course and the remedial teacher if one is assigned.
// Students without marks still appear with the marks columns empty.
type MonitorRow struct {
	StudentName string   `json:"student_name"`
	USN         string   `json:"usn"`
	CourseCode  *string  `json:"course_code"`
	TotalScore  *float64 `json:"total_score"`
	Category    *string  `json:"category"`
	SuppTeacher *string  `json:"supp_teacher"`
}

// GetMonitor builds the monitor dashboard rows
func (s *ReportService) GetMonitor(ctx context.Context) ([]MonitorRow, error) {
	var rows []MonitorRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT st.name  AS student_name,
		       st.usn   AS usn,
		       m.course_code,
		       m.total_score,
		       m.category,
		       t.name   AS supp_teacher
		FROM students st
		LEFT JOIN marks m ON m.student_id = st.id
		LEFT JOIN supplementary sup
		       ON sup.student_id = st.id AND sup.course_code = m.course_code
		LEFT JOIN teachers t ON t.id = sup.teacher_id
		ORDER BY st.name, m.course_code
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build monitor rows: %w", err)
	}
	return rows, nil
}

// GetTeacherRedReport lists red students across every course the
// teacher is assigned to (Teaches rows plus the legacy single-course
// column).
func (s *ReportService) GetTeacherRedReport(ctx context.Context, tid string) ([]RedStudentRow, error) {
	var teacher model.Teacher
	if err := s.db.WithContext(ctx).Preload("Teaches").
		Where("tid = ?", tid).First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to look up teacher: %w", err)
	}

	codes := make([]string, 0, len(teacher.Teaches)+1)
	for _, t := range teacher.Teaches {
		codes = append(codes, t.CourseCode)
	}
	if teacher.CourseCode != nil && *teacher.CourseCode != "" {
		codes = append(codes, *teacher.CourseCode)
	}
	if len(codes) == 0 {
		return []RedStudentRow{}, nil
	}

	var rows []RedStudentRow
	err := s.db.WithContext(ctx).Model(&model.Marks{}).
		Select("students.usn, students.name, marks.course_code, marks.total_score").
		Joins("JOIN students ON students.id = marks.student_id").
		Where("marks.course_code IN ? AND marks.category = ?", codes, string(scoring.CategoryRed)).
		Order("marks.course_code, marks.total_score").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query red students for teacher: %w", err)
	}
	return rows, nil
}
