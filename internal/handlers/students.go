package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/utils"
	"gorm.io/gorm"
)

// StudentHandler handles student profile routes
type StudentHandler struct {
	DB *gorm.DB
}

// ListStudents handles GET /api/students (admin/staff)
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {array} models.Student
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	students, err := services.ListStudents(h.DB)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, students, fiber.StatusOK)
}

// GetStudent handles GET /api/students/:id
// @Summary Get a student profile
// @Description Student row plus the current-state projection of every record kind
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} services.StudentProfile
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpStudentRead, id); err != nil {
		return respondError(c, err)
	}

	profile, err := services.GetStudentProfile(h.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// GetStudentByIPP handles GET /api/students/ipp/:ipp
// @Summary Get a student profile by IPP number
// @Tags Students
// @Produce json
// @Param ipp path string true "IPP number"
// @Success 200 {object} services.StudentProfile
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /students/ipp/{ipp} [get]
func (h *StudentHandler) GetStudentByIPP(c *fiber.Ctx) error {
	ipp := c.Params("ipp")

	profile, err := services.GetStudentByIPP(h.DB, ipp)
	if err != nil {
		return respondError(c, err)
	}
	// The owner is only known after the lookup; the policy check uses
	// the resolved id so a parent can reach its own student by IPP and
	// nothing else.
	if _, err := authorize(c, policy.OpStudentRead, profile.Student.ID); err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// CreateStudent handles POST /api/students (admin only)
// @Summary Create a student
// @Tags Students
// @Accept json
// @Produce json
// @Param body body services.CreateStudentInput true "Student"
// @Success 201 {object} models.Student
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var body services.CreateStudentInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	student, err := services.CreateStudent(h.DB, body)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, student, fiber.StatusCreated)
}

// UpdateStudent handles PATCH /api/students/:id (admin/staff)
// @Summary Update a student
// @Description Patches profile fields; supplying day counters recomputes attendance
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param body body services.UpdateStudentInput true "Fields to update"
// @Success 200 {object} models.Student
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /students/{id} [patch]
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpStudentUpdate, id); err != nil {
		return respondError(c, err)
	}

	var body services.UpdateStudentInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	student, err := services.UpdateStudent(h.DB, id, body)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, student, fiber.StatusOK)
}

// DeleteStudent handles DELETE /api/students/:id (admin only)
// @Summary Delete a student
// @Description Hard delete with explicit cascade over records, version log and report metadata
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpStudentDelete, id); err != nil {
		return respondError(c, err)
	}

	if err := services.DeleteStudent(h.DB, id); err != nil {
		return respondError(c, err)
	}
	return utils.MessageResponse(c, "Student deleted successfully")
}

// ListStudentReports handles GET /api/reports/student/:studentId (admin/staff)
// @Summary List report metadata for a student
// @Tags Reports
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {array} models.Report
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /reports/student/{studentId} [get]
func (h *StudentHandler) ListStudentReports(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "studentId")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpReportRead, id); err != nil {
		return respondError(c, err)
	}

	reports, err := services.ListStudentReports(h.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, reports, fiber.StatusOK)
}
