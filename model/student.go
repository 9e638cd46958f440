package model

import (
	"time"
)

// Student represents an enrolled student. The USN (university serial
// number) is the natural key used everywhere in the API; the numeric ID
// stays internal.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	USN       string    `gorm:"column:usn;uniqueIndex;not null" json:"usn"`
	Name      string    `gorm:"not null" json:"name"`
	Semester  *int      `json:"semester,omitempty"` // nil when not yet assigned
	Section   string    `gorm:"type:varchar(20)" json:"section,omitempty"`

	// Relationships
	Marks         []Marks         `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"marks,omitempty"`
	Supplementary []Supplementary `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}
