package services_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
// TranslateError matters: the record store's retry loop watches for
// gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps concurrent test writers on one SQLite
	// handle instead of racing on separate :memory: databases.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.RecordVersion{},
		&models.ClinicalHistory{},
		&models.DevelopmentalMilestones{},
		&models.DailyLivingSkills{},
		&models.ClinicalObservations{},
		&models.Report{},
		&models.CalendarEvent{},
	))
	return db
}

func createStudent(t *testing.T, db *gorm.DB, tag string) *models.Student {
	t.Helper()
	student := models.Student{
		UDID:         "UDID-" + tag,
		IPPNumber:    "IPP-" + tag,
		Name:         "Student " + tag,
		ActiveStatus: true,
	}
	require.NoError(t, db.Create(&student).Error)
	return &student
}

func createUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{
		Email:        name + "@test.local",
		PasswordHash: "x",
		Name:         name,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestSaveRecordVersionFirstWrite(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A1")
	staff := createUser(t, db, "Staff One", models.RoleStaff)

	version, err := services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{
		"eating":   "Independent",
		"dressing": "Dependent",
	}, staff.ID, "intake")
	require.NoError(t, err)
	require.EqualValues(t, 1, version.VersionNumber)
	require.Equal(t, string(schema.KindADL), version.EntityKind)

	// Current-state row exists and matches the write.
	var row models.DailyLivingSkills
	require.NoError(t, db.Where("student_id = ?", student.ID).Take(&row).Error)
	require.Equal(t, "Independent", row.Eating)
	require.Equal(t, "Dependent", row.Dressing)
	require.Equal(t, "", row.Toileting)
}

func TestSaveRecordVersionPartialUpdateMergesSnapshot(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A2")
	staff := createUser(t, db, "Staff Two", models.RoleStaff)

	_, err := services.SaveRecordVersion(db, schema.KindMilestones, student.ID, map[string]interface{}{
		"social_smile": "Normal",
		"walking":      "Delayed",
	}, staff.ID, "first assessment")
	require.NoError(t, err)

	// Second save touches only one field.
	v2, err := services.SaveRecordVersion(db, schema.KindMilestones, student.ID, map[string]interface{}{
		"walking": "Normal",
	}, staff.ID, "re-assessment")
	require.NoError(t, err)
	require.EqualValues(t, 2, v2.VersionNumber)

	history, err := services.GetRecordHistory(db, schema.KindMilestones, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first.
	require.EqualValues(t, 2, history[0].VersionNumber)
	require.EqualValues(t, 1, history[1].VersionNumber)

	// The v2 snapshot carries the merged field set, not just the delta.
	require.Equal(t, "Normal", history[0].Snapshot["walking"])
	require.Equal(t, "Normal", history[0].Snapshot["social_smile"])
	require.Equal(t, "Delayed", history[1].Snapshot["walking"])

	// Highest-numbered snapshot equals the current-state row.
	var row models.DevelopmentalMilestones
	require.NoError(t, db.Where("student_id = ?", student.ID).Take(&row).Error)
	require.Equal(t, "Normal", row.Walking)
	require.Equal(t, "Normal", row.SocialSmile)
}

func TestSaveRecordVersionRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A3")

	_, err := services.SaveRecordVersion(db, "grade_cards", student.ID, map[string]interface{}{
		"eating": "Independent",
	}, 1, "")
	require.Equal(t, types.KindInvalid, types.KindOf(err))

	_, err = services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{
		"favorite_color": "blue",
	}, 1, "")
	require.Equal(t, types.KindInvalid, types.KindOf(err))

	_, err = services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{}, 1, "")
	require.Equal(t, types.KindInvalid, types.KindOf(err))

	// Unknown student.
	_, err = services.SaveRecordVersion(db, schema.KindADL, 9999, map[string]interface{}{
		"eating": "Independent",
	}, 1, "")
	require.Equal(t, types.KindNotFound, types.KindOf(err))

	// Nothing landed in the version log.
	var count int64
	require.NoError(t, db.Model(&models.RecordVersion{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSaveRecordVersionRollsBackOnCurrentStateFailure(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A4")
	staff := createUser(t, db, "Staff Four", models.RoleStaff)

	// Make the current-state write fail after the version insert.
	require.NoError(t, db.Migrator().DropTable("daily_living_skills"))

	_, err := services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{
		"eating": "Independent",
	}, staff.ID, "")
	require.Error(t, err)

	// The transaction rolled back the version row too.
	var count int64
	require.NoError(t, db.Model(&models.RecordVersion{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSaveRecordVersionConcurrentWriters(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A5")
	staff := createUser(t, db, "Staff Five", models.RoleStaff)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{
				"eating": fmt.Sprintf("attempt-%d", i),
			}, staff.ID, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.Equal(t, types.KindConflict, types.KindOf(err))
		}
	}
	require.Greater(t, succeeded, 0)

	// Version numbers are a gapless 1..N sequence.
	history, err := services.GetRecordHistory(db, schema.KindADL, student.ID)
	require.NoError(t, err)
	require.Len(t, history, succeeded)
	for i, entry := range history {
		require.EqualValues(t, succeeded-i, entry.VersionNumber)
	}
}

func TestGetRecordHistoryResolvesChangerNames(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A6")
	staff := createUser(t, db, "Meera Nair", models.RoleStaff)

	_, err := services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{
		"eating": "Independent",
	}, staff.ID, "")
	require.NoError(t, err)

	history, err := services.GetRecordHistory(db, schema.KindADL, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Meera Nair", history[0].ChangedByName)

	// History survives the changer account being deleted.
	require.NoError(t, db.Delete(&models.User{}, staff.ID).Error)
	history, err = services.GetRecordHistory(db, schema.KindADL, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Unknown user", history[0].ChangedByName)
}

func TestGetRecordHistoryEmptyAndUnknownKind(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A7")

	history, err := services.GetRecordHistory(db, schema.KindADL, student.ID)
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Len(t, history, 0)

	_, err = services.GetRecordHistory(db, "grade_cards", student.ID)
	require.Equal(t, types.KindInvalid, types.KindOf(err))
}

func TestGetCurrentProjection(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "A8")
	staff := createUser(t, db, "Staff Eight", models.RoleStaff)

	_, err := services.SaveRecordVersion(db, schema.KindADL, student.ID, map[string]interface{}{
		"eating": "Independent",
	}, staff.ID, "")
	require.NoError(t, err)
	_, err = services.SaveRecordVersion(db, schema.KindClinicalHistory, student.ID, map[string]interface{}{
		"home_language":    "Tamil",
		"history_seizures": true,
	}, staff.ID, "")
	require.NoError(t, err)

	projection, err := services.GetCurrentProjection(db, student.ID)
	require.NoError(t, err)

	// Kinds never written are absent, not empty.
	require.Len(t, projection, 2)
	require.Equal(t, "Independent", projection[schema.KindADL]["eating"])
	require.Equal(t, "Tamil", projection[schema.KindClinicalHistory]["home_language"])
	require.Equal(t, true, projection[schema.KindClinicalHistory]["history_seizures"])
}
