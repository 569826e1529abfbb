package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
	}
}

func TestLoginRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()

	_, err := services.CreateUser(db, services.CreateUserInput{
		Email:    "staff@test.local",
		Password: "staff-password",
		Name:     "Staff Member",
		Role:     models.RoleStaff,
	})
	require.NoError(t, err)

	result, err := services.Login(db, cfg, "staff@test.local", "staff-password")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, models.RoleStaff, result.User.Role)

	p, err := services.ResolvePrincipal(cfg, result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, p.ID)
	require.Equal(t, policy.RoleStaff, p.Role)
	require.EqualValues(t, 0, p.LinkedStudentID)
}

func TestLoginWrongCredentialsAreIndistinguishable(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()

	_, err := services.CreateUser(db, services.CreateUserInput{
		Email:    "staff@test.local",
		Password: "staff-password",
		Name:     "Staff Member",
		Role:     models.RoleStaff,
	})
	require.NoError(t, err)

	_, badPassword := services.Login(db, cfg, "staff@test.local", "wrong")
	_, badEmail := services.Login(db, cfg, "nobody@test.local", "staff-password")

	require.Equal(t, types.KindUnauthenticated, types.KindOf(badPassword))
	require.Equal(t, types.KindUnauthenticated, types.KindOf(badEmail))
	require.Equal(t, badPassword.Error(), badEmail.Error())
}

func TestResolvePrincipalRejectsGarbage(t *testing.T) {
	cfg := testConfig()

	for _, raw := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := services.ResolvePrincipal(cfg, raw)
		require.Equal(t, types.KindUnauthenticated, types.KindOf(err), "token %q", raw)
	}
}

func TestResolvePrincipalRejectsExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	cfg.TokenExpiry = -time.Minute

	_, err := services.CreateUser(db, services.CreateUserInput{
		Email:    "staff@test.local",
		Password: "staff-password",
		Name:     "Staff Member",
		Role:     models.RoleStaff,
	})
	require.NoError(t, err)

	result, err := services.Login(db, cfg, "staff@test.local", "staff-password")
	require.NoError(t, err)

	_, err = services.ResolvePrincipal(cfg, result.Token)
	require.Equal(t, types.KindUnauthenticated, types.KindOf(err))
}

func TestCreateParentUserResolvesStudentLink(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "P1")

	parent, err := services.CreateUser(db, services.CreateUserInput{
		Email:             "parent@test.local",
		Password:          "parent-password",
		Name:              "Parent One",
		Role:              models.RoleParent,
		LinkedStudentUDID: student.UDID,
	})
	require.NoError(t, err)
	require.NotNil(t, parent.LinkedStudentID)
	require.Equal(t, student.ID, *parent.LinkedStudentID)
	require.Equal(t, student.UDID, parent.LinkedStudentUDID)

	// Parent tokens carry the student link.
	cfg := testConfig()
	result, err := services.Login(db, cfg, "parent@test.local", "parent-password")
	require.NoError(t, err)
	p, err := services.ResolvePrincipal(cfg, result.Token)
	require.NoError(t, err)
	require.Equal(t, policy.RoleParent, p.Role)
	require.Equal(t, student.ID, p.LinkedStudentID)
}

func TestCreateParentUserUnknownUDID(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.CreateUser(db, services.CreateUserInput{
		Email:             "parent@test.local",
		Password:          "parent-password",
		Name:              "Parent One",
		Role:              models.RoleParent,
		LinkedStudentUDID: "UDID-MISSING",
	})
	require.Equal(t, types.KindInvalid, types.KindOf(err))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)

	in := services.CreateUserInput{
		Email:    "staff@test.local",
		Password: "staff-password",
		Name:     "Staff Member",
		Role:     models.RoleStaff,
	}
	_, err := services.CreateUser(db, in)
	require.NoError(t, err)

	_, err = services.CreateUser(db, in)
	require.Equal(t, types.KindInvalid, types.KindOf(err))
}

func TestUpdateAndDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()

	user, err := services.CreateUser(db, services.CreateUserInput{
		Email:    "staff@test.local",
		Password: "staff-password",
		Name:     "Staff Member",
		Role:     models.RoleStaff,
	})
	require.NoError(t, err)

	newName := "Renamed Staff"
	newPassword := "rotated-password"
	_, err = services.UpdateUser(db, user.ID, services.UpdateUserInput{
		Name:     &newName,
		Password: &newPassword,
	})
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = services.Login(db, cfg, "staff@test.local", "staff-password")
	require.Equal(t, types.KindUnauthenticated, types.KindOf(err))
	result, err := services.Login(db, cfg, "staff@test.local", "rotated-password")
	require.NoError(t, err)
	require.Equal(t, "Renamed Staff", result.User.Name)

	require.NoError(t, services.DeleteUser(db, user.ID))
	require.Equal(t, types.KindNotFound, types.KindOf(services.DeleteUser(db, user.ID)))
}
