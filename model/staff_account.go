package model

import (
	"time"
)

// StaffAccount is a login identity for the API. An account may be
// linked to a Teacher via TID, in which case supplementary assignment
// defaults to the logged-in teacher when no tid is supplied.
type StaffAccount struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"type:varchar(20);default:'teacher'" json:"role"` // teacher, admin
	TeacherTID   string    `gorm:"type:varchar(50)" json:"teacher_tid,omitempty"`
}
