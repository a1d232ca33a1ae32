package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *appointment.CreateAppointment
	reschedule   *appointment.RescheduleAppointment
	changeStatus *appointment.ChangeAppointmentStatus
	listByDate   *appointment.ListAppointmentsByDate
	listByMonth  *appointment.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	create *appointment.CreateAppointment,
	reschedule *appointment.RescheduleAppointment,
	changeStatus *appointment.ChangeAppointmentStatus,
	listByDate *appointment.ListAppointmentsByDate,
	listByMonth *appointment.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		reschedule:   reschedule,
		changeStatus: changeStatus,
		listByDate:   listByDate,
		listByMonth:  listByMonth,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email" binding:"omitempty,email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	BranchID    *uint  `json:"branch_id"`
	Date        string `json:"date" binding:"required,date"`
	Time        string `json:"time" binding:"required,timeofday"`
	Notes       string `json:"notes" binding:"max=255"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required,date"`
	Time string `json:"time" binding:"required,timeofday"`
}

// ======================================================
// CREATE
// ======================================================

// Create books on behalf of the authenticated professional. Staff bookings
// skip the minimum advance and start confirmed.
func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := currentUserID(c)
	businessID := currentBusinessID(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.create.Execute(
		c.Request.Context(),
		appointment.CreateAppointmentInput{
			BusinessID:     businessID,
			ProfessionalID: userID,
			BranchID:       req.BranchID,
			ClientName:     req.ClientName,
			ClientPhone:    req.ClientPhone,
			ClientEmail:    req.ClientEmail,
			ServiceID:      req.ServiceID,
			Date:           req.Date,
			Time:           req.Time,
			Notes:          req.Notes,
			CreatedBy:      &userID,
		},
	)
	if err != nil {
		writeError(c, err, "failed_to_create_appointment")
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	userID := currentUserID(c)
	businessID := currentBusinessID(c)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	// Only the calendar date matters; the use case anchors it in the
	// professional's timezone.
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	branchID, ok := optionalUintQuery(c, "branch_id")
	if !ok {
		httperr.BadRequest(c, "invalid_branch_id", "Unidade inválida.")
		return
	}

	appointments, err := h.listByDate.Execute(
		c.Request.Context(),
		userID,
		businessID,
		branchID,
		date,
	)
	if err != nil {
		writeError(c, err, "failed_to_list_appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	userID := currentUserID(c)
	businessID := currentBusinessID(c)

	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Ano e mês são obrigatórios.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	appointments, err := h.listByMonth.Execute(
		c.Request.Context(),
		userID,
		businessID,
		year,
		month,
	)
	if err != nil {
		writeError(c, err, "failed_to_list_appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": appointments,
	})
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID := currentUserID(c)
	businessID := currentBusinessID(c)

	id, ok := paramID(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.reschedule.Execute(
		c.Request.Context(),
		appointment.RescheduleAppointmentInput{
			BusinessID:     businessID,
			ProfessionalID: userID,
			AppointmentID:  id,
			Date:           req.Date,
			Time:           req.Time,
			UpdatedBy:      &userID,
		},
	)
	if err != nil {
		writeError(c, err, "failed_to_reschedule_appointment")
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// STATUS (confirm / start / complete / cancel / no-show)
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.transition(c, domain.ActionConfirm)
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	h.transition(c, domain.ActionStart)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, domain.ActionComplete)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, domain.ActionCancel)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.transition(c, domain.ActionNoShow)
}

func (h *AppointmentHandler) transition(c *gin.Context, action domain.Action) {
	userID := currentUserID(c)
	businessID := currentBusinessID(c)

	id, ok := paramID(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	ap, err := h.changeStatus.Execute(
		c.Request.Context(),
		businessID,
		userID,
		id,
		action,
	)
	if err != nil {
		writeError(c, err, "failed_to_update_appointment")
		return
	}

	c.JSON(http.StatusOK, ap)
}
