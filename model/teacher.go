package model

import (
	"time"
)

// Teacher represents a member of teaching staff. TID is the natural key
// (e.g. employee code). Course assignments live in Teaches; the legacy
// single-course columns (CourseCode, Credit) are kept nullable so data
// from the flat schema generation still loads.
type Teacher struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TID       string    `gorm:"column:tid;uniqueIndex;not null" json:"tid"`
	Name      string    `gorm:"not null" json:"name"`
	CourseCode *string  `json:"course_code,omitempty"` // legacy flat-schema column
	Credit     *int     `json:"credit,omitempty"`      // legacy flat-schema column

	// Relationships
	Teaches       []Teaches       `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teaches,omitempty"`
	Supplementary []Supplementary `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"-"`
}

// Teaches maps a teacher to a course, optionally scoped to a semester
// and section. A teacher can hold any number of these and a course can
// appear in any number of them.
type Teaches struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	TeacherID  uint      `gorm:"not null;uniqueIndex:idx_teaches_teacher_course" json:"-"`
	CourseCode string    `gorm:"not null;uniqueIndex:idx_teaches_teacher_course" json:"course_code"`
	Semester   *int      `json:"semester,omitempty"`
	Section    string    `gorm:"type:varchar(20)" json:"section,omitempty"`

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

func (Teaches) TableName() string { return "teaches" }
