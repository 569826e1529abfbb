package models

import (
	"time"
)

// CalendarEvent is a center-wide event shown on the staff dashboard.
type CalendarEvent struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	EventDate   time.Time `gorm:"not null;index" json:"event_date"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for CalendarEvent
func (CalendarEvent) TableName() string {
	return "calendar_events"
}
