package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

type BusinessHandler struct {
	db *gorm.DB
}

func NewBusinessHandler(db *gorm.DB) *BusinessHandler {
	return &BusinessHandler{db: db}
}

type UpdateBusinessConfigRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	Address           *string `json:"address" binding:"omitempty,max=255"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *BusinessHandler) GetMeBusiness(c *gin.Context) {
	business, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) UpdateMeBusiness(c *gin.Context) {
	business, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateBusinessConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		business.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Address != nil {
		business.Address = *req.Address
	}

	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		business.Timezone = *req.Timezone
	}

	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		business.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(business).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Erro ao salvar as configurações do negócio.")
		return
	}

	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) load(c *gin.Context) (*models.Business, bool) {
	var business models.Business
	if err := h.db.First(&business, currentBusinessID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "business_not_found", "Negócio não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_business", "Erro ao buscar dados do negócio.")
		return nil, false
	}
	return &business, true
}
