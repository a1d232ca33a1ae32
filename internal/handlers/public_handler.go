package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves client self-service. The tenant comes from the slug.
type PublicHandler struct {
	db           *gorm.DB
	create       *appointment.CreateAppointment
	availability *appointment.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	create *appointment.CreateAppointment,
	availability *appointment.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		create:       create,
		availability: availability,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ClientName     string `json:"client_name" binding:"required,max=100"`
	ClientPhone    string `json:"client_phone" binding:"required,max=20"`
	ClientEmail    string `json:"client_email" binding:"omitempty,email"`
	ServiceID      uint   `json:"service_id" binding:"required"`
	ProfessionalID uint   `json:"professional_id"`
	BranchID       *uint  `json:"branch_id"`
	Date           string `json:"date" binding:"required,date"`      // YYYY-MM-DD
	Time           string `json:"time" binding:"required,timeofday"` // HH:mm
	Notes          string `json:"notes" binding:"max=255"`
}

func (h *PublicHandler) business(c *gin.Context) (*models.Business, bool) {
	var business models.Business
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&business).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Negócio não encontrado.")
		return nil, false
	}
	return &business, true
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Where("business_id = ? AND active = ?", business.ID, true)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business": business,
		"services": services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) AvailabilityForClient(c *gin.Context) {
	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Data e serviço obrigatórios.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return
	}

	professionalID, ok := optionalUintQuery(c, "professional_id")
	if !ok {
		httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
		return
	}
	branchID, ok := optionalUintQuery(c, "branch_id")
	if !ok {
		httperr.BadRequest(c, "invalid_branch_id", "Unidade inválida.")
		return
	}

	business, ok := h.business(c)
	if !ok {
		return
	}

	in := appointment.GetAvailabilityInput{
		BusinessID: business.ID,
		BranchID:   branchID,
		ServiceID:  uint(serviceID),
		Date:       dateStr,
		Public:     true,
	}
	if professionalID != nil {
		in.ProfessionalID = *professionalID
	}

	slots, err := h.availability.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "availability_failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT (PUBLIC)
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.create.Execute(
		c.Request.Context(),
		appointment.CreateAppointmentInput{
			BusinessID:     business.ID,
			ProfessionalID: req.ProfessionalID,
			BranchID:       req.BranchID,
			ClientName:     req.ClientName,
			ClientPhone:    req.ClientPhone,
			ClientEmail:    req.ClientEmail,
			ServiceID:      req.ServiceID,
			Date:           req.Date,
			Time:           req.Time,
			Notes:          req.Notes,
			Public:         true,
		},
	)
	if err != nil {
		writeError(c, err, "failed_to_create_appointment")
		return
	}

	c.JSON(http.StatusCreated, ap)
}
