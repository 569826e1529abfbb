package policy_test

import (
	"testing"

	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/policy"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want policy.Role
	}{
		{models.RoleAdmin, policy.RoleAdmin},
		{models.RoleStaff, policy.RoleStaff},
		{models.RoleParent, policy.RoleParent},
		{"", policy.RoleUnknown},
		{"superuser", policy.RoleUnknown},
	}
	for _, c := range cases {
		if got := policy.ParseRole(c.in); got != c.want {
			t.Errorf("ParseRole(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRoleStringRoundTrip(t *testing.T) {
	for _, s := range []string{models.RoleAdmin, models.RoleStaff, models.RoleParent} {
		if got := policy.ParseRole(s).String(); got != s {
			t.Errorf("round trip of %q produced %q", s, got)
		}
	}
}

var allOps = []policy.Operation{
	policy.OpStudentList,
	policy.OpStudentRead,
	policy.OpStudentCreate,
	policy.OpStudentUpdate,
	policy.OpStudentDelete,
	policy.OpRecordRead,
	policy.OpRecordWrite,
	policy.OpTokenLinkRead,
	policy.OpTokenRotate,
	policy.OpUserManage,
	policy.OpReportRead,
	policy.OpEventManage,
	policy.OpStatsRead,
}

func TestAuthorizeAdmin(t *testing.T) {
	admin := policy.Principal{ID: 1, Role: policy.RoleAdmin}
	for _, op := range allOps {
		if !policy.Authorize(admin, op, 42) {
			t.Errorf("admin denied op %d", op)
		}
	}
}

func TestAuthorizeStaff(t *testing.T) {
	staff := policy.Principal{ID: 2, Role: policy.RoleStaff}
	denied := map[policy.Operation]bool{
		policy.OpUserManage:    true,
		policy.OpStudentDelete: true,
	}
	for _, op := range allOps {
		got := policy.Authorize(staff, op, 42)
		want := !denied[op]
		if got != want {
			t.Errorf("staff op %d: got %v, want %v", op, got, want)
		}
	}
}

func TestAuthorizeParent(t *testing.T) {
	parent := policy.Principal{ID: 3, Role: policy.RoleParent, LinkedStudentID: 7}

	// Read access to the linked student only.
	if !policy.Authorize(parent, policy.OpStudentRead, 7) {
		t.Error("parent denied read of linked student")
	}
	if !policy.Authorize(parent, policy.OpRecordRead, 7) {
		t.Error("parent denied record read of linked student")
	}

	// Any other student is off limits.
	if policy.Authorize(parent, policy.OpStudentRead, 8) {
		t.Error("parent allowed read of another student")
	}
	if policy.Authorize(parent, policy.OpRecordRead, 8) {
		t.Error("parent allowed record read of another student")
	}

	// Writes and administrative surfaces are denied even for the
	// linked student.
	for _, op := range []policy.Operation{
		policy.OpStudentList,
		policy.OpStudentCreate,
		policy.OpStudentUpdate,
		policy.OpStudentDelete,
		policy.OpRecordWrite,
		policy.OpTokenLinkRead,
		policy.OpTokenRotate,
		policy.OpUserManage,
		policy.OpReportRead,
		policy.OpEventManage,
		policy.OpStatsRead,
	} {
		if policy.Authorize(parent, op, 7) {
			t.Errorf("parent allowed op %d on linked student", op)
		}
	}
}

func TestAuthorizeParentWithoutLink(t *testing.T) {
	orphan := policy.Principal{ID: 4, Role: policy.RoleParent}
	if policy.Authorize(orphan, policy.OpStudentRead, 0) {
		t.Error("unlinked parent allowed read with zero owner id")
	}
}

func TestAuthorizeUnknownRole(t *testing.T) {
	nobody := policy.Principal{ID: 5, Role: policy.RoleUnknown}
	for _, op := range allOps {
		if policy.Authorize(nobody, op, 1) {
			t.Errorf("unknown role allowed op %d", op)
		}
	}
}
