package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"gorm.io/gorm"
)

// EmergencyView is the complete set of fields the anonymous emergency
// path can ever expose. The projection is this struct, not a filter over
// the student row, so new student columns cannot leak through it.
type EmergencyView struct {
	Name          string `json:"name"`
	BloodGroup    string `json:"blood_group"`
	CenterName    string `json:"center_name"`
	Address       string `json:"address"`
	ParentContact string `json:"parent_contact"`
	ParentEmail   string `json:"parent_email"`
}

// PublicLink is the staff-facing description of a student's live
// emergency link.
type PublicLink struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	UDID  string  `json:"udid"`
	Token *string `json:"token"`
}

// RotatePublicToken issues a fresh token for the student and overwrites
// any previous one. There is exactly one live token per student; the
// old link dies the moment this commits.
func RotatePublicToken(db *gorm.DB, studentID uint) (string, error) {
	token := uuid.NewString()
	res := db.Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("public_link_token", token)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", types.NotFound("student not found")
	}
	return token, nil
}

// GetPublicLink returns the student's current token for staff to share.
func GetPublicLink(db *gorm.DB, studentID uint) (*PublicLink, error) {
	var student models.Student
	if err := db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("student not found")
		}
		return nil, err
	}
	return &PublicLink{
		ID:    student.ID,
		Name:  student.Name,
		UDID:  student.UDID,
		Token: student.PublicLinkToken,
	}, nil
}

// ResolveToken maps a token to the fixed emergency projection. An
// unknown token and a student with no token issued produce the same
// not-found; callers cannot tell the cases apart.
func ResolveToken(db *gorm.DB, token string) (*EmergencyView, error) {
	if token == "" {
		return nil, types.NotFound("invalid or expired link")
	}

	var student models.Student
	if err := db.Where("public_link_token = ?", token).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("invalid or expired link")
		}
		return nil, err
	}

	return &EmergencyView{
		Name:          student.Name,
		BloodGroup:    student.BloodGroup,
		CenterName:    student.CenterName,
		Address:       student.Address,
		ParentContact: student.ParentContact,
		ParentEmail:   student.ParentEmail,
	}, nil
}
