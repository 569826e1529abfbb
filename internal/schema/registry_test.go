package schema_test

import (
	"testing"

	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/types"
)

func TestKindsAreClosed(t *testing.T) {
	kinds := schema.Kinds()
	if len(kinds) != 4 {
		t.Fatalf("expected 4 kinds, got %d", len(kinds))
	}

	want := map[schema.EntityKind]string{
		schema.KindClinicalHistory: "clinical_histories",
		schema.KindMilestones:      "developmental_milestones",
		schema.KindADL:             "daily_living_skills",
		schema.KindObservations:    "clinical_observations",
	}
	for _, kind := range kinds {
		spec, err := schema.Lookup(kind)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", kind, err)
		}
		if spec.Table != want[kind] {
			t.Errorf("kind %s table = %q, want %q", kind, spec.Table, want[kind])
		}
		if len(spec.Fields) == 0 {
			t.Errorf("kind %s has an empty field schema", kind)
		}
	}
}

func TestLookupUnknownKind(t *testing.T) {
	_, err := schema.Lookup("report_cards")
	if err == nil {
		t.Fatal("expected an error for an unregistered kind")
	}
	if types.KindOf(err) != types.KindInvalid {
		t.Errorf("expected invalid classification, got %v", types.KindOf(err))
	}
}

func TestValidateFields(t *testing.T) {
	cases := []struct {
		name    string
		kind    schema.EntityKind
		fields  map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid adl write",
			kind: schema.KindADL,
			fields: map[string]interface{}{
				"eating":   "Independent",
				"dressing": "Needs Assistance",
			},
		},
		{
			name: "valid bool field",
			kind: schema.KindClinicalHistory,
			fields: map[string]interface{}{
				"consanguinity": true,
			},
		},
		{
			name:    "empty field set",
			kind:    schema.KindADL,
			fields:  map[string]interface{}{},
			wantErr: true,
		},
		{
			name: "field from another kind",
			kind: schema.KindADL,
			fields: map[string]interface{}{
				"social_smile": "Normal",
			},
			wantErr: true,
		},
		{
			name: "string where bool expected",
			kind: schema.KindClinicalHistory,
			fields: map[string]interface{}{
				"history_seizures": "yes",
			},
			wantErr: true,
		},
		{
			name: "number where string expected",
			kind: schema.KindMilestones,
			fields: map[string]interface{}{
				"walking": 3,
			},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := schema.ValidateFields(c.kind, c.fields)
			if c.wantErr && err == nil {
				t.Fatal("expected validation to fail")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if c.wantErr && types.KindOf(err) != types.KindInvalid {
				t.Errorf("expected invalid classification, got %v", types.KindOf(err))
			}
		})
	}
}
