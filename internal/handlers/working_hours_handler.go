package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

// Several entries may share a weekday; the resolver unions them.
type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime    string `json:"end_time" binding:"omitempty,timeofday"`
	LunchStart string `json:"lunch_start" binding:"omitempty,timeofday"`
	LunchEnd   string `json:"lunch_end" binding:"omitempty,timeofday"`
}

type WorkingHoursUpdateRequest struct {
	// Nil edits the rules that apply to every branch.
	BranchID *uint              `json:"branch_id"`
	Days     []WorkingDayConfig `json:"days" binding:"required,dive"`
}

var errBranchNotInBusiness = errors.New("branch not in business")

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	professionalID := currentUserID(c)

	branchID, ok := optionalUintQuery(c, "branch_id")
	if !ok {
		httperr.BadRequest(c, "invalid_branch_id", "Unidade inválida.")
		return
	}

	q := h.db.Where("professional_id = ?", professionalID)
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}

	var hours []models.WorkingHours
	if err := q.
		Order("weekday ASC, start_time ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_working_hours", "Erro ao buscar horários.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Update replaces every rule of the given branch scope in one transaction.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	professionalID := currentUserID(c)
	businessID := currentBusinessID(c)

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	toCreate := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		if msg := validateWorkingDay(d); msg != "" {
			httperr.BadRequest(c, "invalid_working_hours", msg)
			return
		}
		toCreate = append(toCreate, models.WorkingHours{
			ProfessionalID: professionalID,
			BranchID:       req.BranchID,
			Weekday:        d.Weekday,
			Active:         d.Active,
			StartTime:      d.StartTime,
			EndTime:        d.EndTime,
			LunchStart:     d.LunchStart,
			LunchEnd:       d.LunchEnd,
		})
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		scope := tx.Where("professional_id = ?", professionalID)
		if req.BranchID != nil {
			var count int64
			if err := tx.Model(&models.Branch{}).
				Where("id = ? AND business_id = ?", *req.BranchID, businessID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return errBranchNotInBusiness
			}
			scope = scope.Where("branch_id = ?", *req.BranchID)
		} else {
			scope = scope.Where("branch_id IS NULL")
		}

		if err := scope.Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		if errors.Is(err, errBranchNotInBusiness) {
			httperr.NotFound(c, "branch_not_found", "Unidade não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_save_working_hours", "Erro ao salvar horários.")
		return
	}

	c.JSON(http.StatusOK, toCreate)
}

// validateWorkingDay checks an active day the way the resolver will read it:
// a same-day window, and a lunch break inside it when one is given. It
// returns the user-facing message, or "" when the day is fine.
func validateWorkingDay(d WorkingDayConfig) string {
	if !d.Active {
		return ""
	}

	w, err := availability.NewWindow(d.StartTime, d.EndTime)
	if err != nil {
		return "Horário de início e fim inválidos."
	}

	if d.LunchStart == "" && d.LunchEnd == "" {
		return ""
	}
	lunch, err := availability.NewWindow(d.LunchStart, d.LunchEnd)
	if err != nil {
		return "Intervalo de almoço inválido."
	}
	if lunch.Start < w.Start || lunch.End > w.End {
		return "Intervalo de almoço fora do expediente."
	}
	return ""
}
