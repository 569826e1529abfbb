package models

import (
	"time"
)

// RecordVersion is one immutable entry in the shared version log.
// Snapshot holds the full field values of the entity at that version.
// The unique index on (entity_kind, entity_id, version_number) is the
// backstop that makes racing writers collide instead of silently losing
// an update.
type RecordVersion struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityKind    string    `gorm:"size:32;not null;index:idx_record_versions_entity;index:idx_record_versions_unique,unique" json:"entity_kind"`
	EntityID      uint      `gorm:"not null;index:idx_record_versions_entity;index:idx_record_versions_unique,unique" json:"entity_id"`
	VersionNumber uint      `gorm:"not null;index:idx_record_versions_unique,unique" json:"version_number"`
	Snapshot      JSON      `gorm:"type:json" json:"snapshot"`
	ChangedBy     uint      `gorm:"not null" json:"changed_by"`
	ChangeReason  string    `gorm:"size:512" json:"change_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName overrides the table name for RecordVersion
func (RecordVersion) TableName() string {
	return "record_versions"
}
