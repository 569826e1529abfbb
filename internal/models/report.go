package models

import (
	"time"
)

// Report is document metadata only. File bytes live in the external
// document store and are referenced by id from the calling layer.
type Report struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	Type        string    `gorm:"size:64;not null" json:"type"`
	SummaryText string    `gorm:"type:text" json:"summary_text,omitempty"`
	Status      string    `gorm:"size:32;not null;default:'Draft'" json:"status"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for Report
func (Report) TableName() string {
	return "reports"
}
