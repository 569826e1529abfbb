package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/schema"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"github.com/vexcel-trust/recordsdb/internal/utils"
	"gorm.io/gorm"
)

// RecordHandler handles the versioned clinical record routes
type RecordHandler struct {
	DB *gorm.DB
}

// saveRecordInput is the entity write request shape. The acting
// principal comes from the resolved credential, never from the body.
type saveRecordInput struct {
	StudentID    types.FlexID           `json:"student_id" validate:"required"`
	EntityKind   string                 `json:"entity_kind" validate:"required"`
	Fields       map[string]interface{} `json:"fields" validate:"required"`
	ChangeReason string                 `json:"change_reason"`
}

// SaveRecord handles POST /api/records (admin/staff)
// @Summary Save a new record version
// @Description Appends a version to the log and synchronizes the current-state row in one transaction
// @Tags Records
// @Accept json
// @Produce json
// @Param body body saveRecordInput true "Record write"
// @Success 201 {object} models.RecordVersion
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /records [post]
func (h *RecordHandler) SaveRecord(c *fiber.Ctx) error {
	var body saveRecordInput
	if err := parseBody(c, &body); err != nil {
		return respondError(c, err)
	}

	p, err := authorize(c, policy.OpRecordWrite, body.StudentID.Uint())
	if err != nil {
		return respondError(c, err)
	}

	version, err := services.SaveRecordVersion(
		h.DB,
		schema.EntityKind(body.EntityKind),
		body.StudentID.Uint(),
		body.Fields,
		p.ID,
		body.ChangeReason,
	)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, version, fiber.StatusCreated)
}

// GetRecordHistory handles GET /api/records/:entityKind/:studentId
// @Summary Get the version history for one record kind
// @Description Full audit history, newest first, with changer display names resolved
// @Tags Records
// @Produce json
// @Param entityKind path string true "Entity kind" Enums(clinical_history, milestones, adl, observations)
// @Param studentId path int true "Student ID"
// @Success 200 {array} services.RecordHistoryEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /records/{entityKind}/{studentId} [get]
func (h *RecordHandler) GetRecordHistory(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := authorize(c, policy.OpRecordRead, studentID); err != nil {
		return respondError(c, err)
	}

	entries, err := services.GetRecordHistory(h.DB, schema.EntityKind(c.Params("entityKind")), studentID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, entries, fiber.StatusOK)
}
