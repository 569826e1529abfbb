// Package schema is the entity directory: the closed set of versioned
// clinical sub-record kinds and the field schema each kind accepts.
// The record store consults it before any write; fields outside a kind's
// schema are rejected up front instead of being passed through to SQL.
package schema

import (
	"fmt"

	"github.com/vexcel-trust/recordsdb/internal/types"
)

// EntityKind identifies one versioned clinical sub-record category.
type EntityKind string

const (
	KindClinicalHistory EntityKind = "clinical_history"
	KindMilestones      EntityKind = "milestones"
	KindADL             EntityKind = "adl"
	KindObservations    EntityKind = "observations"
)

// FieldType is the primitive type a schema field carries.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldBool   FieldType = "bool"
	FieldText   FieldType = "text"
)

// KindSpec describes one entity kind: its current-state table and the
// fields it accepts.
type KindSpec struct {
	Kind   EntityKind
	Table  string
	Fields map[string]FieldType
}

var registry = map[EntityKind]KindSpec{
	KindClinicalHistory: {
		Kind:  KindClinicalHistory,
		Table: "clinical_histories",
		Fields: map[string]FieldType{
			"siblings_details":       FieldString,
			"family_structure":       FieldString,
			"home_language":          FieldString,
			"consanguinity":          FieldBool,
			"pregnancy_duration":     FieldString,
			"delivery_nature":        FieldString,
			"birth_weight":           FieldString,
			"birth_cry":              FieldString,
			"history_seizures":       FieldBool,
			"history_respiratory":    FieldBool,
			"current_medications":    FieldText,
			"allergies":              FieldString,
			"age_disability_noticed": FieldString,
		},
	},
	KindMilestones: {
		Kind:  KindMilestones,
		Table: "developmental_milestones",
		Fields: map[string]FieldType{
			"social_smile":      FieldString,
			"neck_control":      FieldString,
			"sitting":           FieldString,
			"crawling":          FieldString,
			"standing":          FieldString,
			"walking":           FieldString,
			"speech_initiation": FieldString,
		},
	},
	KindADL: {
		Kind:  KindADL,
		Table: "daily_living_skills",
		Fields: map[string]FieldType{
			"eating":    FieldString,
			"dressing":  FieldString,
			"toileting": FieldString,
		},
	},
	KindObservations: {
		Kind:  KindObservations,
		Table: "clinical_observations",
		Fields: map[string]FieldType{
			"general_appearance":       FieldText,
			"psychomotor_skills":       FieldText,
			"sensory_issues":           FieldText,
			"cognition_memory":         FieldText,
			"communication_expressive": FieldText,
			"communication_receptive":  FieldText,
			"social_interaction":       FieldText,
		},
	},
}

// kindOrder keeps projection output deterministic.
var kindOrder = []EntityKind{
	KindClinicalHistory,
	KindMilestones,
	KindADL,
	KindObservations,
}

// Kinds returns all registered entity kinds in a stable order.
func Kinds() []EntityKind {
	out := make([]EntityKind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// Lookup returns the spec for kind, or an invalid error for anything
// outside the closed enumeration.
func Lookup(kind EntityKind) (KindSpec, error) {
	spec, ok := registry[kind]
	if !ok {
		return KindSpec{}, types.Invalid(fmt.Sprintf("unknown entity kind %q", kind))
	}
	return spec, nil
}

// ValidateFields checks that every supplied field exists in the kind's
// schema and carries a value of the declared primitive type.
func ValidateFields(kind EntityKind, fields map[string]interface{}) error {
	spec, err := Lookup(kind)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return types.Invalid("no fields supplied")
	}
	for name, value := range fields {
		ft, ok := spec.Fields[name]
		if !ok {
			return types.Invalid(fmt.Sprintf("field %q is not part of %q", name, kind))
		}
		switch ft {
		case FieldBool:
			if _, ok := value.(bool); !ok {
				return types.Invalid(fmt.Sprintf("field %q must be a boolean", name))
			}
		case FieldString, FieldText:
			if _, ok := value.(string); !ok {
				return types.Invalid(fmt.Sprintf("field %q must be a string", name))
			}
		}
	}
	return nil
}
