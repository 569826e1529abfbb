package database

import (
	"errors"
	"log"
	"time"

	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed populates an empty database with one account per role and a
// demo student with all four clinical sub-records. Every step is
// idempotent so repeated starts with SEED_DATA=true are safe.
func Seed(db *gorm.DB) error {
	if _, err := seedUser(db, models.User{
		Email: "admin@vexcel.org",
		Name:  "System Admin",
		Role:  models.RoleAdmin,
	}, "admin123"); err != nil {
		return err
	}

	staff, err := seedUser(db, models.User{
		Email: "staff@vexcel.org",
		Name:  "Staff Member",
		Role:  models.RoleStaff,
	}, "staff123")
	if err != nil {
		return err
	}

	student, err := seedStudent(db)
	if err != nil {
		return err
	}

	parent := models.User{
		Email:             "parent@vexcel.org",
		Name:              "Rahul's Parent",
		Role:              models.RoleParent,
		LinkedStudentID:   &student.ID,
		LinkedStudentUDID: student.UDID,
	}
	if _, err := seedUser(db, parent, "parent123"); err != nil {
		return err
	}

	return seedClinicalRecords(db, student.ID, staff.ID)
}

func seedUser(db *gorm.DB, user models.User, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ?", user.Email).Take(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	log.Printf("Seeded %s user %s", user.Role, user.Email)
	return &user, nil
}

func seedStudent(db *gorm.DB) (*models.Student, error) {
	var existing models.Student
	err := db.Where("ipp_number = ?", "IPP-3211").Take(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dob := time.Date(2015, time.May, 20, 0, 0, 0, 0, time.UTC)
	student := models.Student{
		UDID:             "UDID-TN-00042",
		IPPNumber:        "IPP-3211",
		Name:             "Rahul S.",
		DOB:              &dob,
		Gender:           "Male",
		BloodGroup:       "B+",
		Height:           "120",
		Weight:           "28",
		Address:          "123, Mandaveli, Chennai",
		CenterName:       "V-Excel Foundation",
		ParentNames:      "Mrs. & Mr. Srinivasan",
		ParentContact:    "+91 98XXX XXXXX",
		ParentEmail:      "srinivasan@example.com",
		DisabilityType:   "Autism Spectrum Disorder",
		ReferralDoctor:   "Dr. Venkatesh (Child Psychologist)",
		DaysPresent:      85,
		DaysAbsent:       7,
		TotalWorkingDays: 92,
		Attendance:       92,
		ActiveStatus:     true,
	}
	if err := db.Create(&student).Error; err != nil {
		return nil, err
	}
	log.Printf("Seeded student %s (%s)", student.Name, student.IPPNumber)
	return &student, nil
}

// seedClinicalRecords writes the demo sub-records through the record
// store so each one lands in the version log as version 1, the same as
// any other write.
func seedClinicalRecords(db *gorm.DB, studentID, changedBy uint) error {
	records := map[schema.EntityKind]map[string]interface{}{
		schema.KindClinicalHistory: {
			"siblings_details":       "1 younger sister (8 yrs)",
			"family_structure":       "Nuclear Family",
			"home_language":          "Tamil & English",
			"consanguinity":          false,
			"pregnancy_duration":     "Full Term",
			"delivery_nature":        "Normal",
			"birth_weight":           "2.8 kg",
			"birth_cry":              "Immediate",
			"history_seizures":       false,
			"history_respiratory":    false,
			"current_medications":    "None",
			"allergies":              "None known",
			"age_disability_noticed": "2 years",
		},
		schema.KindMilestones: {
			"social_smile":      "Normal",
			"neck_control":      "Normal",
			"sitting":           "Normal",
			"crawling":          "Delayed",
			"standing":          "Normal",
			"walking":           "Delayed",
			"speech_initiation": "Delayed",
		},
		schema.KindADL: {
			"eating":    "Independent",
			"dressing":  "Needs Assistance",
			"toileting": "Partially Independent",
		},
		schema.KindObservations: {
			"general_appearance":       "Well groomed, makes fleeting eye contact",
			"psychomotor_skills":       "Fine motor delays, grip strength weak",
			"sensory_issues":           "Auditory sensitivity to loud noises",
			"cognition_memory":         "Good rote memory, struggles with abstract concepts",
			"communication_expressive": "Uses single words/short phrases",
			"communication_receptive":  "Follows 1-step commands",
			"social_interaction":       "Parallel play, limited peer interaction",
		},
	}

	for _, kind := range schema.Kinds() {
		fields, ok := records[kind]
		if !ok {
			continue
		}
		var count int64
		if err := db.Model(&models.RecordVersion{}).
			Where("entity_kind = ? AND entity_id = ?", string(kind), studentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if _, err := services.SaveRecordVersion(db, kind, studentID, fields, changedBy, "Initial intake"); err != nil {
			return err
		}
		log.Printf("Seeded %s record for student %d", kind, studentID)
	}
	return nil
}
