package model

import (
	"time"
)

// Supplementary assigns a teacher as remedial instructor for a red-band
// student in a course. Identity is the full (student, course, teacher)
// triple — re-assigning the same teacher is a no-op — while edit and
// delete address the (student, course) pair and touch every teacher's
// record for it. Records are kept when a student later climbs out of
// red; remediation history is not auto-revoked.
type Supplementary struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_supp_student_course_teacher;index:idx_supp_student_course" json:"-"`
	CourseCode string    `gorm:"not null;uniqueIndex:idx_supp_student_course_teacher;index:idx_supp_student_course" json:"course_code"`
	TeacherID  uint      `gorm:"not null;uniqueIndex:idx_supp_student_course_teacher" json:"-"`
	Reason     string    `gorm:"type:text" json:"reason,omitempty"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Teacher Teacher `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

func (Supplementary) TableName() string { return "supplementary" }
