package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/types"
)

func TestRotatePublicToken(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "T1")

	// No token until the first rotation.
	link, err := services.GetPublicLink(db, student.ID)
	require.NoError(t, err)
	require.Nil(t, link.Token)

	token, err := services.RotatePublicToken(db, student.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	view, err := services.ResolveToken(db, token)
	require.NoError(t, err)
	require.Equal(t, student.Name, view.Name)

	// Rotation replaces the token; the old link dies.
	newToken, err := services.RotatePublicToken(db, student.ID)
	require.NoError(t, err)
	require.NotEqual(t, token, newToken)

	_, err = services.ResolveToken(db, token)
	require.Equal(t, types.KindNotFound, types.KindOf(err))

	_, err = services.ResolveToken(db, newToken)
	require.NoError(t, err)
}

func TestRotatePublicTokenUnknownStudent(t *testing.T) {
	db := setupTestDB(t)
	_, err := services.RotatePublicToken(db, 404)
	require.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestResolveTokenProjectionIsFixed(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "T2")
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", student.ID).Updates(map[string]interface{}{
		"blood_group":      "B+",
		"center_name":      "Main Center",
		"address":          "12 Beach Road",
		"parent_contact":   "+91 90000 00000",
		"parent_email":     "parent@example.com",
		"disability_type":  "ASD",
		"quick_notes":      "internal note, never public",
		"clinical_case_no": "CC-9",
	}).Error)

	token, err := services.RotatePublicToken(db, student.ID)
	require.NoError(t, err)

	view, err := services.ResolveToken(db, token)
	require.NoError(t, err)
	require.Equal(t, services.EmergencyView{
		Name:          student.Name,
		BloodGroup:    "B+",
		CenterName:    "Main Center",
		Address:       "12 Beach Road",
		ParentContact: "+91 90000 00000",
		ParentEmail:   "parent@example.com",
	}, *view)
}

func TestResolveTokenRejectsEmptyAndUnknown(t *testing.T) {
	db := setupTestDB(t)
	createStudent(t, db, "T3")

	// Empty token must never match a student whose token is NULL.
	_, err := services.ResolveToken(db, "")
	require.Equal(t, types.KindNotFound, types.KindOf(err))

	_, err = services.ResolveToken(db, "no-such-token")
	require.Equal(t, types.KindNotFound, types.KindOf(err))
}
