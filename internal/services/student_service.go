package services

import (
	"errors"
	"math"
	"time"

	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"gorm.io/gorm"
)

// StudentProfile is a student plus the current-state projection of all
// entity kinds, assembled for the profile page in one call.
type StudentProfile struct {
	Student models.Student                    `json:"student"`
	Records map[string]map[string]interface{} `json:"records"`
}

// ListStudents returns every student ordered by name.
func ListStudents(db *gorm.DB) ([]models.Student, error) {
	var students []models.Student
	if err := db.Order("name ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// GetStudentProfile loads a student by id together with the current
// projection of every entity kind.
func GetStudentProfile(db *gorm.DB, id uint) (*StudentProfile, error) {
	var student models.Student
	if err := db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("student not found")
		}
		return nil, err
	}
	return assembleProfile(db, student)
}

// GetStudentByIPP loads a student by case number together with the
// current projection of every entity kind.
func GetStudentByIPP(db *gorm.DB, ipp string) (*StudentProfile, error) {
	var student models.Student
	if err := db.Where("ipp_number = ?", ipp).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("student not found")
		}
		return nil, err
	}
	return assembleProfile(db, student)
}

func assembleProfile(db *gorm.DB, student models.Student) (*StudentProfile, error) {
	projection, err := GetCurrentProjection(db, student.ID)
	if err != nil {
		return nil, err
	}
	records := make(map[string]map[string]interface{}, len(projection))
	for kind, fields := range projection {
		records[string(kind)] = fields
	}
	return &StudentProfile{Student: student, Records: records}, nil
}

// CreateStudentInput carries the admin-entered profile fields.
type CreateStudentInput struct {
	UDID              string `json:"udid" validate:"required"`
	IPPNumber         string `json:"ipp_number" validate:"required"`
	Name              string `json:"name" validate:"required"`
	DOB               string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender            string `json:"gender"`
	BloodGroup        string `json:"blood_group"`
	Height            string `json:"height"`
	Weight            string `json:"weight"`
	Address           string `json:"address"`
	CenterName        string `json:"center_name"`
	ParentNames       string `json:"parent_names"`
	ParentContact     string `json:"parent_contact"`
	ParentEmail       string `json:"parent_email" validate:"omitempty,email"`
	DisabilityType    string `json:"disability_type"`
	DisabilityDetail  string `json:"disability_detail"`
	ClinicalCaseNo    string `json:"clinical_case_no"`
	TherapistAssigned string `json:"therapist_assigned"`
	ReferralDoctor    string `json:"referral_doctor"`
	QuickNotes        string `json:"quick_notes"`
}

// CreateStudent inserts a new student row.
func CreateStudent(db *gorm.DB, in CreateStudentInput) (*models.Student, error) {
	student := models.Student{
		UDID:              in.UDID,
		IPPNumber:         in.IPPNumber,
		Name:              in.Name,
		Gender:            in.Gender,
		BloodGroup:        in.BloodGroup,
		Height:            in.Height,
		Weight:            in.Weight,
		Address:           in.Address,
		CenterName:        in.CenterName,
		ParentNames:       in.ParentNames,
		ParentContact:     in.ParentContact,
		ParentEmail:       in.ParentEmail,
		DisabilityType:    in.DisabilityType,
		DisabilityDetail:  in.DisabilityDetail,
		ClinicalCaseNo:    in.ClinicalCaseNo,
		TherapistAssigned: in.TherapistAssigned,
		ReferralDoctor:    in.ReferralDoctor,
		QuickNotes:        in.QuickNotes,
		Attendance:        100,
		ActiveStatus:      true,
	}
	if in.DOB != "" {
		dob, err := time.Parse("2006-01-02", in.DOB)
		if err != nil {
			return nil, types.Invalid("dob must be formatted YYYY-MM-DD")
		}
		student.DOB = &dob
	}

	if err := db.Create(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.Invalid("a student with this UDID or IPP number already exists")
		}
		return nil, err
	}
	return &student, nil
}

// UpdateStudentInput patches profile fields. Nil pointers leave the
// field untouched. Supplying either attendance counter recomputes the
// percentage.
type UpdateStudentInput struct {
	Name              *string `json:"name"`
	DOB               *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender            *string `json:"gender"`
	BloodGroup        *string `json:"blood_group"`
	Height            *string `json:"height"`
	Weight            *string `json:"weight"`
	Address           *string `json:"address"`
	CenterName        *string `json:"center_name"`
	ParentNames       *string `json:"parent_names"`
	ParentContact     *string `json:"parent_contact"`
	ParentEmail       *string `json:"parent_email" validate:"omitempty,email"`
	DisabilityType    *string `json:"disability_type"`
	DisabilityDetail  *string `json:"disability_detail"`
	ClinicalCaseNo    *string `json:"clinical_case_no"`
	TherapistAssigned *string `json:"therapist_assigned"`
	ReferralDoctor    *string `json:"referral_doctor"`
	QuickNotes        *string `json:"quick_notes"`
	ActiveStatus      *bool   `json:"active_status"`
	DaysPresent       *int    `json:"days_present" validate:"omitempty,min=0"`
	DaysAbsent        *int    `json:"days_absent" validate:"omitempty,min=0"`
}

// UpdateStudent patches a student row, recomputing the attendance
// percentage whenever either day counter changes.
func UpdateStudent(db *gorm.DB, id uint, in UpdateStudentInput) (*models.Student, error) {
	var student models.Student
	if err := db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("student not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setString("name", in.Name)
	setString("gender", in.Gender)
	setString("blood_group", in.BloodGroup)
	setString("height", in.Height)
	setString("weight", in.Weight)
	setString("address", in.Address)
	setString("center_name", in.CenterName)
	setString("parent_names", in.ParentNames)
	setString("parent_contact", in.ParentContact)
	setString("parent_email", in.ParentEmail)
	setString("disability_type", in.DisabilityType)
	setString("disability_detail", in.DisabilityDetail)
	setString("clinical_case_no", in.ClinicalCaseNo)
	setString("therapist_assigned", in.TherapistAssigned)
	setString("referral_doctor", in.ReferralDoctor)
	setString("quick_notes", in.QuickNotes)
	if in.ActiveStatus != nil {
		updates["active_status"] = *in.ActiveStatus
	}
	if in.DOB != nil {
		dob, err := time.Parse("2006-01-02", *in.DOB)
		if err != nil {
			return nil, types.Invalid("dob must be formatted YYYY-MM-DD")
		}
		updates["dob"] = dob
	}

	if in.DaysPresent != nil || in.DaysAbsent != nil {
		present := student.DaysPresent
		absent := student.DaysAbsent
		if in.DaysPresent != nil {
			present = *in.DaysPresent
		}
		if in.DaysAbsent != nil {
			absent = *in.DaysAbsent
		}
		total := present + absent
		updates["days_present"] = present
		updates["days_absent"] = absent
		updates["total_working_days"] = total
		if total > 0 {
			updates["attendance"] = int(math.Round(float64(present) / float64(total) * 100))
		} else {
			updates["attendance"] = 100
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&student).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &student, nil
}

// DeleteStudent hard-deletes a student and everything hanging off it:
// current-state rows for every kind, the version log, report metadata,
// and the parent-account link. One transaction; no orphans.
func DeleteStudent(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("student not found")
			}
			return err
		}

		for _, kind := range schema.Kinds() {
			spec, err := schema.Lookup(kind)
			if err != nil {
				return err
			}
			// Table names come from the static registry, never from input.
			if err := tx.Exec("DELETE FROM "+spec.Table+" WHERE student_id = ?", id).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("entity_id = ?", id).Delete(&models.RecordVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("linked_student_id = ?", id).
			Updates(map[string]interface{}{"linked_student_id": nil, "linked_student_udid": ""}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
}

// ListStudentReports returns report metadata for one student, newest
// first.
func ListStudentReports(db *gorm.DB, studentID uint) ([]models.Report, error) {
	var reports []models.Report
	if err := db.Where("student_id = ?", studentID).
		Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
