package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/validators"
)

// ScheduleExceptionHandler manages date overrides of the weekly rules:
// days off, partial blocks and extra hours.
type ScheduleExceptionHandler struct {
	db *gorm.DB
}

func NewScheduleExceptionHandler(db *gorm.DB) *ScheduleExceptionHandler {
	return &ScheduleExceptionHandler{db: db}
}

type CreateScheduleExceptionRequest struct {
	Date      string `json:"date" binding:"required,date"`
	Kind      string `json:"kind" binding:"required,oneof=blocked extra_hours"`
	StartTime string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime   string `json:"end_time" binding:"omitempty,timeofday"`
	Reason    string `json:"reason" binding:"max=255"`
}

// List accepts optional inclusive from/to dates.
func (h *ScheduleExceptionHandler) List(c *gin.Context) {
	professionalID := currentUserID(c)

	from := c.Query("from")
	to := c.Query("to")
	if (from != "" && !validators.IsDate(from)) || (to != "" && !validators.IsDate(to)) {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	q := h.db.Where("professional_id = ?", professionalID)
	// "2006-01-02" strings compare in calendar order.
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}

	var exceptions []models.ScheduleException
	if err := q.Order("date ASC, start_time ASC").Find(&exceptions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_exceptions", "Erro ao listar exceções.")
		return
	}

	httpresp.List(c, exceptions)
}

func (h *ScheduleExceptionHandler) Create(c *gin.Context) {
	professionalID := currentUserID(c)

	var req CreateScheduleExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ex := models.ScheduleException{
		ProfessionalID: professionalID,
		Date:           req.Date,
		Kind:           req.Kind,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Reason:         req.Reason,
	}

	// Only a blocked day may omit the times.
	if !(ex.Kind == models.ExceptionBlocked && ex.WholeDay()) {
		if _, err := availability.NewWindow(ex.StartTime, ex.EndTime); err != nil {
			httperr.BadRequest(c, "invalid_exception_window", "Horário de início e fim inválidos.")
			return
		}
	}

	if err := h.db.Create(&ex).Error; err != nil {
		httperr.Internal(c, "failed_to_create_exception", "Erro ao salvar exceção.")
		return
	}

	c.JSON(http.StatusCreated, ex)
}

func (h *ScheduleExceptionHandler) Delete(c *gin.Context) {
	professionalID := currentUserID(c)

	id, ok := paramID(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Exceção inválida.")
		return
	}

	res := h.db.
		Where("id = ? AND professional_id = ?", id, professionalID).
		Delete(&models.ScheduleException{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_exception", "Erro ao remover exceção.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "exception_not_found", "Exceção não encontrada.")
		return
	}

	c.Status(http.StatusNoContent)
}
