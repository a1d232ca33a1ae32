package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/usecase/calendar"
)

// AvailabilityHandler exposes the read-only engine queries for the
// authenticated professional.
type AvailabilityHandler struct {
	validate *calendar.ValidateAvailability
	slots    *calendar.GetAvailableSlots
}

func NewAvailabilityHandler(
	validate *calendar.ValidateAvailability,
	slots *calendar.GetAvailableSlots,
) *AvailabilityHandler {
	return &AvailabilityHandler{validate: validate, slots: slots}
}

type ValidateAvailabilityRequest struct {
	StartTime            time.Time `json:"start_time" binding:"required"`
	EndTime              time.Time `json:"end_time" binding:"required"`
	BranchID             *uint     `json:"branch_id"`
	ExcludeAppointmentID *uint     `json:"exclude_appointment_id"`
}

// Validate answers with the verdict, always 200 unless the store fails.
func (h *AvailabilityHandler) Validate(c *gin.Context) {
	var req ValidateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	res, err := h.validate.Execute(
		c.Request.Context(),
		calendar.ValidateAvailabilityInput{
			ProfessionalID:       currentUserID(c),
			BranchID:             req.BranchID,
			StartTime:            req.StartTime,
			EndTime:              req.EndTime,
			ExcludeAppointmentID: req.ExcludeAppointmentID,
		},
	)
	if err != nil {
		writeError(c, err, "availability_failed")
		return
	}

	c.JSON(http.StatusOK, res)
}

// Slots lists start times for ?date&service_id[&step_minutes][&branch_id][&include_past].
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	serviceID, ok := optionalUintQuery(c, "service_id")
	if !ok || serviceID == nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço obrigatório.")
		return
	}

	step, ok := intQuery(c, "step_minutes", 0)
	if !ok || step < 0 {
		httperr.BadRequest(c, "invalid_step", "Intervalo entre horários inválido.")
		return
	}

	branchID, ok := optionalUintQuery(c, "branch_id")
	if !ok {
		httperr.BadRequest(c, "invalid_branch_id", "Unidade inválida.")
		return
	}

	out, err := h.slots.Execute(
		c.Request.Context(),
		calendar.GetAvailableSlotsInput{
			BusinessID:     currentBusinessID(c),
			ProfessionalID: currentUserID(c),
			BranchID:       branchID,
			Date:           date,
			ServiceID:      *serviceID,
			StepMinutes:    step,
			IncludePast:    c.Query("include_past") == "true",
		},
	)
	if err != nil {
		writeError(c, err, "availability_failed")
		return
	}

	c.JSON(http.StatusOK, out)
}
