package services

import (
	"errors"
	"time"

	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"gorm.io/gorm"
)

// CenterStats is the staff dashboard aggregate.
type CenterStats struct {
	StudentCount      int64                  `json:"student_count"`
	ActiveStudents    int64                  `json:"active_students"`
	AverageAttendance float64                `json:"average_attendance"`
	UpcomingEvents    []models.CalendarEvent `json:"upcoming_events"`
}

// GetCenterStats aggregates the dashboard numbers in one call.
func GetCenterStats(db *gorm.DB) (*CenterStats, error) {
	stats := &CenterStats{}

	if err := db.Model(&models.Student{}).Count(&stats.StudentCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Student{}).
		Where("active_status = ?", true).
		Count(&stats.ActiveStudents).Error; err != nil {
		return nil, err
	}
	if stats.StudentCount > 0 {
		var avg *float64
		if err := db.Model(&models.Student{}).
			Select("AVG(attendance)").Scan(&avg).Error; err != nil {
			return nil, err
		}
		if avg != nil {
			stats.AverageAttendance = *avg
		}
	}

	if err := db.Where("event_date >= ?", time.Now().UTC().Truncate(24*time.Hour)).
		Order("event_date ASC").
		Limit(10).
		Find(&stats.UpcomingEvents).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// EventInput is the calendar-event payload.
type EventInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	EventDate   string `json:"event_date" validate:"required,datetime=2006-01-02"`
}

// CreateEvent adds a calendar event.
func CreateEvent(db *gorm.DB, in EventInput, createdBy uint) (*models.CalendarEvent, error) {
	date, err := time.Parse("2006-01-02", in.EventDate)
	if err != nil {
		return nil, types.Invalid("event_date must be formatted YYYY-MM-DD")
	}
	event := models.CalendarEvent{
		Title:       in.Title,
		Description: in.Description,
		EventDate:   date,
		CreatedBy:   createdBy,
	}
	if err := db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent patches a calendar event.
func UpdateEvent(db *gorm.DB, id uint, in EventInput) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("event not found")
		}
		return nil, err
	}

	date, err := time.Parse("2006-01-02", in.EventDate)
	if err != nil {
		return nil, types.Invalid("event_date must be formatted YYYY-MM-DD")
	}
	updates := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"event_date":  date,
	}
	if err := db.Model(&event).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes a calendar event.
func DeleteEvent(db *gorm.DB, id uint) error {
	res := db.Delete(&models.CalendarEvent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("event not found")
	}
	return nil
}
