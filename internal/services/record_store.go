package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// saveVersionRetries bounds the retry loop for the version-number race.
// The race needs two writers hitting the same (kind, student) pair in
// the same instant, so one retry almost always resolves it.
const saveVersionRetries = 3

// unknownUserName is the placeholder shown when the changer account has
// since been deleted.
const unknownUserName = "Unknown user"

// RecordHistoryEntry is one version-log row plus the resolved display
// name of whoever made the change.
type RecordHistoryEntry struct {
	ID            uint                   `json:"id"`
	EntityKind    string                 `json:"entity_kind"`
	EntityID      uint                   `json:"entity_id"`
	VersionNumber uint                   `json:"version_number"`
	Snapshot      map[string]interface{} `json:"snapshot"`
	ChangedBy     uint                   `json:"changed_by"`
	ChangedByName string                 `json:"changed_by_name"`
	ChangeReason  string                 `json:"change_reason,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// SaveRecordVersion appends a new version to the log for (kind, studentID)
// and synchronizes the kind's current-state row, both inside one
// transaction. Fields not supplied keep their prior current-state values;
// the stored snapshot is the merged field set, so the highest-numbered
// version always equals the current-state row.
//
// Validation (unknown kind, unknown field, missing student) happens
// before the transaction and never touches the log.
func SaveRecordVersion(db *gorm.DB, kind schema.EntityKind, studentID uint, fields map[string]interface{}, changedBy uint, reason string) (*models.RecordVersion, error) {
	spec, err := schema.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateFields(kind, fields); err != nil {
		return nil, err
	}

	var exists int64
	if err := db.Model(&models.Student{}).Where("id = ?", studentID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, types.NotFound("student not found")
	}

	var version *models.RecordVersion
	for attempt := 0; attempt < saveVersionRetries; attempt++ {
		version, err = saveVersionOnce(db, spec, studentID, fields, changedBy, reason)
		if err == nil {
			return version, nil
		}
		// A lost race on the (kind, entity, version) unique key is the
		// only error worth retrying.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, types.Conflict("record was modified concurrently, retry the save")
}

func saveVersionOnce(db *gorm.DB, spec schema.KindSpec, studentID uint, fields map[string]interface{}, changedBy uint, reason string) (*models.RecordVersion, error) {
	var version models.RecordVersion

	err := db.Transaction(func(tx *gorm.DB) error {
		// Serialize writers on this student. SQLite has no FOR UPDATE
		// grammar and serializes writes on its own.
		lockQuery := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Model(&models.Student{})
		if tx.Dialector.Name() != "sqlite" {
			lockQuery = lockQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var locked models.Student
		if err := lockQuery.Where("id = ?", studentID).First(&locked).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("student not found")
			}
			return err
		}

		var maxVersion uint
		row := tx.Model(&models.RecordVersion{}).
			Select("COALESCE(MAX(version_number), 0)").
			Where("entity_kind = ? AND entity_id = ?", spec.Kind, studentID)
		if err := row.Scan(&maxVersion).Error; err != nil {
			return err
		}

		// Merge over the existing current-state row so the snapshot holds
		// the full post-save field set, not just the delta.
		current, found, err := readCurrentRow(tx, spec, studentID)
		if err != nil {
			return err
		}
		merged := make(map[string]interface{}, len(spec.Fields))
		for name, value := range current {
			merged[name] = value
		}
		for name, value := range fields {
			merged[name] = value
		}

		snapshot, err := json.Marshal(merged)
		if err != nil {
			return err
		}

		version = models.RecordVersion{
			EntityKind:    string(spec.Kind),
			EntityID:      studentID,
			VersionNumber: maxVersion + 1,
			Snapshot:      models.JSON{JSON: snapshot},
			ChangedBy:     changedBy,
			ChangeReason:  reason,
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		cols := make(map[string]interface{}, len(fields)+2)
		for name, value := range fields {
			cols[name] = value
		}
		cols["updated_at"] = now
		if !found {
			cols["student_id"] = studentID
			cols["created_at"] = now
			return tx.Table(spec.Table).Create(&cols).Error
		}
		return tx.Table(spec.Table).Where("student_id = ?", studentID).Updates(cols).Error
	})
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// readCurrentRow loads the current-state row for (spec, studentID) as a
// field map restricted to the kind's schema. found is false when the
// student has no row for this kind yet.
func readCurrentRow(db *gorm.DB, spec schema.KindSpec, studentID uint) (map[string]interface{}, bool, error) {
	row := map[string]interface{}{}
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Table(spec.Table).
		Where("student_id = ?", studentID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return projectFields(spec, row), true, nil
}

// projectFields reduces a raw table row to the schema's field set,
// normalizing driver-specific scalar representations.
func projectFields(spec schema.KindSpec, row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(spec.Fields))
	for name, ft := range spec.Fields {
		value, ok := row[name]
		if !ok || value == nil {
			continue
		}
		switch ft {
		case schema.FieldBool:
			out[name] = toBool(value)
		default:
			out[name] = toString(value)
		}
	}
	return out
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case float64:
		return b != 0
	}
	return false
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

// GetRecordHistory returns the version log for (kind, studentID), newest
// first. Changer display names are resolved by a join at read time; a
// deleted account comes back as a fixed placeholder. No versions yields
// an empty slice, not an error.
func GetRecordHistory(db *gorm.DB, kind schema.EntityKind, studentID uint) ([]RecordHistoryEntry, error) {
	if _, err := schema.Lookup(kind); err != nil {
		return nil, err
	}

	type historyRow struct {
		models.RecordVersion
		ChangedByName *string
	}
	var rows []historyRow
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Table("record_versions").
		Select("record_versions.*, users.name AS changed_by_name").
		Joins("LEFT JOIN users ON users.id = record_versions.changed_by").
		Where("record_versions.entity_kind = ? AND record_versions.entity_id = ?", kind, studentID).
		Order("record_versions.version_number DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]RecordHistoryEntry, 0, len(rows))
	for _, r := range rows {
		name := unknownUserName
		if r.ChangedByName != nil && *r.ChangedByName != "" {
			name = *r.ChangedByName
		}
		snapshot := map[string]interface{}{}
		if len(r.Snapshot.JSON) > 0 {
			if err := json.Unmarshal(r.Snapshot.JSON, &snapshot); err != nil {
				return nil, err
			}
		}
		entries = append(entries, RecordHistoryEntry{
			ID:            r.ID,
			EntityKind:    r.EntityKind,
			EntityID:      r.EntityID,
			VersionNumber: r.VersionNumber,
			Snapshot:      snapshot,
			ChangedBy:     r.ChangedBy,
			ChangedByName: name,
			ChangeReason:  r.ChangeReason,
			CreatedAt:     r.CreatedAt,
		})
	}
	return entries, nil
}

// GetCurrentProjection reads the current-state rows for every entity
// kind in one call. Kinds with no row yet are simply absent from the
// result.
func GetCurrentProjection(db *gorm.DB, studentID uint) (map[schema.EntityKind]map[string]interface{}, error) {
	projection := make(map[schema.EntityKind]map[string]interface{})
	for _, kind := range schema.Kinds() {
		spec, err := schema.Lookup(kind)
		if err != nil {
			return nil, err
		}
		fields, found, err := readCurrentRow(db, spec, studentID)
		if err != nil {
			return nil, err
		}
		if found {
			projection[kind] = fields
		}
	}
	return projection, nil
}
