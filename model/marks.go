package model

import (
	"time"
)

// Marks holds the four raw assessment scores for one student in one
// course plus the derived total and band. TotalScore and Category are
// never written directly by handlers: every write path goes through the
// marks service, which recomputes them from the raw fields inside the
// same transaction. The composite unique index enforces one record per
// (student, course) pair.
type Marks struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_marks_student_course" json:"-"`
	CourseCode string    `gorm:"not null;uniqueIndex:idx_marks_student_course" json:"course_code"`

	// Raw inputs. Missing or malformed input is coerced to 0 upstream.
	IA1        int `gorm:"not null;default:0" json:"ia1"`
	IA2        int `gorm:"not null;default:0" json:"ia2"`
	IA3        int `gorm:"not null;default:0" json:"ia3"`
	Assignment int `gorm:"not null;default:0" json:"assignment"`

	// Derived fields, always consistent with the raw inputs above.
	TotalScore float64 `gorm:"not null;default:0" json:"total_score"`
	Category   string  `gorm:"type:varchar(10);not null;index" json:"category"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

func (Marks) TableName() string { return "marks" }
