package models_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/vexcel-trust/recordsdb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestMigratedColumnNames pins the database column names the raw query
// paths and the embedded MariaDB DDL depend on. GORM's naming strategy
// splits the ID initialism (UDID would become ud_id) unless the column
// tag fixes the name, so these must be asserted against a real
// migration, not the struct definition.
func TestMigratedColumnNames(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Student{}, &models.User{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	migrator := db.Migrator()
	checks := []struct {
		model  interface{}
		column string
	}{
		{&models.Student{}, "udid"},
		{&models.Student{}, "ipp_number"},
		{&models.Student{}, "dob"},
		{&models.User{}, "linked_student_udid"},
		{&models.User{}, "linked_student_id"},
	}
	for _, c := range checks {
		if !migrator.HasColumn(c.model, c.column) {
			t.Errorf("Expected column %q on %T", c.column, c.model)
		}
	}

	// The raw lookups in the parent-registration and unlink paths use
	// these literal names; a rename would silently break them.
	student := models.Student{UDID: "UDID-COL", IPPNumber: "IPP-COL", Name: "Column Check"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	var found models.Student
	if err := db.Where("udid = ?", "UDID-COL").First(&found).Error; err != nil {
		t.Fatalf("Lookup by udid column failed: %v", err)
	}
	if found.ID != student.ID {
		t.Errorf("Lookup returned student %d, want %d", found.ID, student.ID)
	}

	user := models.User{Email: "col@test.local", PasswordHash: "x", Name: "Column Check", Role: models.RoleParent, LinkedStudentUDID: student.UDID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	res := db.Model(&models.User{}).Where("linked_student_udid = ?", student.UDID).
		Updates(map[string]interface{}{"linked_student_udid": ""})
	if res.Error != nil {
		t.Fatalf("Update by linked_student_udid column failed: %v", res.Error)
	}
	if res.RowsAffected != 1 {
		t.Errorf("Rows affected = %d, want 1", res.RowsAffected)
	}
}
