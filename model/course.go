package model

import (
	"time"
)

// Course represents a registered course. The registry is optional:
// marks and teaching assignments reference courses by code and tolerate
// codes that have no Course row (minimal-schema deployments).
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	Credit    int       `gorm:"default:0" json:"credit"`
	Semester  *int      `json:"semester,omitempty"`
}
