// Package policy is the single authorization decision point. Every
// request-handling path resolves a Principal and asks Authorize; no
// handler compares role strings on its own.
package policy

import (
	"github.com/vexcel-trust/recordsdb/internal/models"
)

// Role is the tagged variant behind the persisted role strings.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleStaff
	RoleParent
)

// ParseRole maps a persisted role string to its variant.
func ParseRole(s string) Role {
	switch s {
	case models.RoleAdmin:
		return RoleAdmin
	case models.RoleStaff:
		return RoleStaff
	case models.RoleParent:
		return RoleParent
	}
	return RoleUnknown
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return models.RoleAdmin
	case RoleStaff:
		return models.RoleStaff
	case RoleParent:
		return models.RoleParent
	}
	return "unknown"
}

// Principal is the authenticated actor behind one request. It is built
// fresh from the resolved credential every time; nothing ambient.
type Principal struct {
	ID              uint
	Role            Role
	LinkedStudentID uint // 0 unless Role is RoleParent
}

// Operation enumerates everything a principal can ask the core to do.
type Operation int

const (
	OpStudentList Operation = iota
	OpStudentRead
	OpStudentCreate
	OpStudentUpdate
	OpStudentDelete
	OpRecordRead
	OpRecordWrite
	OpTokenLinkRead
	OpTokenRotate
	OpUserManage
	OpReportRead
	OpEventManage
	OpStatsRead
)

// readOnly reports whether op never mutates state. Parents are limited
// to these.
func (op Operation) readOnly() bool {
	switch op {
	case OpStudentRead, OpRecordRead:
		return true
	}
	return false
}

// Authorize decides whether principal p may perform op against the
// student identified by ownerStudentID (0 for operations that are not
// student-scoped). First matching rule wins:
//
//  1. admin: everything.
//  2. staff: everything except account management and student
//     hard-deletion.
//  3. parent: read operations on its own linked student only. The
//     reports surface is denied outright, independent of student id.
func Authorize(p Principal, op Operation, ownerStudentID uint) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleStaff:
		switch op {
		case OpUserManage, OpStudentDelete:
			return false
		}
		return true
	case RoleParent:
		if !op.readOnly() {
			return false
		}
		return p.LinkedStudentID != 0 && p.LinkedStudentID == ownerStudentID
	}
	return false
}
