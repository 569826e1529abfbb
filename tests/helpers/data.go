package helpers

import (
	"fmt"
	"testing"

	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateTestUser creates an account with a known password.
func CreateTestUser(t *testing.T, db *gorm.DB, email, password, role string, linkedStudentID *uint) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Email:           email,
		PasswordHash:    string(hash),
		Name:            "Test " + role,
		Role:            role,
		LinkedStudentID: linkedStudentID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return &user
}

// CreateTestStudent creates a student with unique identifiers derived
// from the tag.
func CreateTestStudent(t *testing.T, db *gorm.DB, tag string) *models.Student {
	t.Helper()

	student := models.Student{
		UDID:         fmt.Sprintf("UDID-TEST-%s", tag),
		IPPNumber:    fmt.Sprintf("IPP-TEST-%s", tag),
		Name:         "Student " + tag,
		ActiveStatus: true,
		Attendance:   100,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("Failed to create student %s: %v", tag, err)
	}
	return &student
}

// CreateTestRecord writes a clinical record version through the record
// store, the same path production writes take.
func CreateTestRecord(t *testing.T, db *gorm.DB, kind schema.EntityKind, studentID, changedBy uint, fields map[string]interface{}) *models.RecordVersion {
	t.Helper()

	version, err := services.SaveRecordVersion(db, kind, studentID, fields, changedBy, "test write")
	if err != nil {
		t.Fatalf("Failed to save %s record: %v", kind, err)
	}
	return version
}
