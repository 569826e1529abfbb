package models

import (
	"time"
)

// Student is the identity root every clinical sub-record hangs off.
// PublicLinkToken is the single live token for the anonymous emergency
// view; nullable, unique, replaced wholesale on rotation.
type Student struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UDID              string     `gorm:"column:udid;uniqueIndex;size:64;not null" json:"udid"`
	IPPNumber         string     `gorm:"column:ipp_number;uniqueIndex;size:64;not null" json:"ipp_number"`
	Name              string     `gorm:"size:255;not null" json:"name"`
	DOB               *time.Time `gorm:"column:dob" json:"dob,omitempty"`
	Gender            string     `gorm:"size:32" json:"gender,omitempty"`
	BloodGroup        string     `gorm:"size:8" json:"blood_group,omitempty"`
	Height            string     `gorm:"size:32" json:"height,omitempty"`
	Weight            string     `gorm:"size:32" json:"weight,omitempty"`
	Address           string     `gorm:"size:512" json:"address,omitempty"`
	CenterName        string     `gorm:"size:255" json:"center_name,omitempty"`
	ParentNames       string     `gorm:"size:255" json:"parent_names,omitempty"`
	ParentContact     string     `gorm:"size:64" json:"parent_contact,omitempty"`
	ParentEmail       string     `gorm:"size:255" json:"parent_email,omitempty"`
	DisabilityType    string     `gorm:"size:255" json:"disability_type,omitempty"`
	DisabilityDetail  string     `gorm:"size:512" json:"disability_detail,omitempty"`
	ClinicalCaseNo    string     `gorm:"size:64" json:"clinical_case_no,omitempty"`
	TherapistAssigned string     `gorm:"size:255" json:"therapist_assigned,omitempty"`
	ReferralDoctor    string     `gorm:"size:255" json:"referral_doctor,omitempty"`
	Attendance        int        `gorm:"not null;default:100" json:"attendance"`
	DaysPresent       int        `gorm:"not null;default:0" json:"days_present"`
	DaysAbsent        int        `gorm:"not null;default:0" json:"days_absent"`
	TotalWorkingDays  int        `gorm:"not null;default:0" json:"total_working_days"`
	QuickNotes        string     `gorm:"type:text" json:"quick_notes,omitempty"`
	ActiveStatus      bool       `gorm:"not null;default:true" json:"active_status"`
	PublicLinkToken   *string    `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName overrides the table name for Student
func (Student) TableName() string {
	return "students"
}
