package models

import (
	"time"
)

// Current-state tables: exactly one row per student per entity kind,
// enforced by the unique index on student_id. Only the record store's
// SaveVersion writes these; any other write path would let the table
// and the version log diverge.

// ClinicalHistory is the current state of the clinical_history kind.
type ClinicalHistory struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID            uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	SiblingsDetails      string    `gorm:"size:255" json:"siblings_details,omitempty"`
	FamilyStructure      string    `gorm:"size:64" json:"family_structure,omitempty"`
	HomeLanguage         string    `gorm:"size:128" json:"home_language,omitempty"`
	Consanguinity        bool      `gorm:"not null;default:false" json:"consanguinity"`
	PregnancyDuration    string    `gorm:"size:64" json:"pregnancy_duration,omitempty"`
	DeliveryNature       string    `gorm:"size:64" json:"delivery_nature,omitempty"`
	BirthWeight          string    `gorm:"size:32" json:"birth_weight,omitempty"`
	BirthCry             string    `gorm:"size:64" json:"birth_cry,omitempty"`
	HistorySeizures      bool      `gorm:"not null;default:false" json:"history_seizures"`
	HistoryRespiratory   bool      `gorm:"not null;default:false" json:"history_respiratory"`
	CurrentMedications   string    `gorm:"type:text" json:"current_medications,omitempty"`
	Allergies            string    `gorm:"size:255" json:"allergies,omitempty"`
	AgeDisabilityNoticed string    `gorm:"size:128" json:"age_disability_noticed,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DevelopmentalMilestones is the current state of the milestones kind.
type DevelopmentalMilestones struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID        uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	SocialSmile      string    `gorm:"size:32" json:"social_smile,omitempty"`
	NeckControl      string    `gorm:"size:32" json:"neck_control,omitempty"`
	Sitting          string    `gorm:"size:32" json:"sitting,omitempty"`
	Crawling         string    `gorm:"size:32" json:"crawling,omitempty"`
	Standing         string    `gorm:"size:32" json:"standing,omitempty"`
	Walking          string    `gorm:"size:32" json:"walking,omitempty"`
	SpeechInitiation string    `gorm:"size:32" json:"speech_initiation,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DailyLivingSkills is the current state of the adl kind.
type DailyLivingSkills struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	Eating    string    `gorm:"size:32" json:"eating,omitempty"`
	Dressing  string    `gorm:"size:32" json:"dressing,omitempty"`
	Toileting string    `gorm:"size:32" json:"toileting,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClinicalObservations is the current state of the observations kind.
type ClinicalObservations struct {
	ID                      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID               uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	GeneralAppearance       string    `gorm:"type:text" json:"general_appearance,omitempty"`
	PsychomotorSkills       string    `gorm:"type:text" json:"psychomotor_skills,omitempty"`
	SensoryIssues           string    `gorm:"type:text" json:"sensory_issues,omitempty"`
	CognitionMemory         string    `gorm:"type:text" json:"cognition_memory,omitempty"`
	CommunicationExpressive string    `gorm:"type:text" json:"communication_expressive,omitempty"`
	CommunicationReceptive  string    `gorm:"type:text" json:"communication_receptive,omitempty"`
	SocialInteraction       string    `gorm:"type:text" json:"social_interaction,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// TableName overrides the table name for ClinicalHistory
func (ClinicalHistory) TableName() string {
	return "clinical_histories"
}

// TableName overrides the table name for DevelopmentalMilestones
func (DevelopmentalMilestones) TableName() string {
	return "developmental_milestones"
}

// TableName overrides the table name for DailyLivingSkills
func (DailyLivingSkills) TableName() string {
	return "daily_living_skills"
}

// TableName overrides the table name for ClinicalObservations
func (ClinicalObservations) TableName() string {
	return "clinical_observations"
}
