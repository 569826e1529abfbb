package models

import (
	"time"
)

// Role values a user account can hold. The policy package carries the
// tagged variant; this is the persisted representation.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleParent = "parent"
)

// User is a portal account. Parent accounts are linked to exactly one
// student; admin and staff accounts have no link.
type User struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email             string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash      string    `gorm:"size:255;not null" json:"-"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Role              string    `gorm:"size:16;not null" json:"role"`
	LinkedStudentID   *uint     `gorm:"index" json:"linked_student_id,omitempty"`
	LinkedStudentUDID string    `gorm:"column:linked_student_udid;size:64" json:"linked_student_udid,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
