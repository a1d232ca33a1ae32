package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

type UpdateMeRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Timezone *string `json:"timezone,omitempty"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, meResponse(user))
}

// UpdateMe edits the professional's own profile. An empty timezone falls
// back to the business one.
func (h *MeHandler) UpdateMe(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Timezone != nil {
		if *req.Timezone != "" && !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		user.Timezone = *req.Timezone
	}

	if err := h.db.Omit("Business").Save(user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Erro ao salvar perfil.")
		return
	}

	c.JSON(http.StatusOK, meResponse(user))
}

func (h *MeHandler) load(c *gin.Context) (*models.User, bool) {
	var user models.User
	if err := h.db.Preload("Business").First(&user, currentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "user_not_found", "Usuário não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_user", "Erro ao buscar usuário.")
		return nil, false
	}
	return &user, true
}

func meResponse(user *models.User) gin.H {
	return gin.H{
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"phone":       user.Phone,
			"role":        user.Role,
			"timezone":    timezone.ForProfessional(user).String(),
			"business_id": user.BusinessID,
		},
		"business": gin.H{
			"id":       user.Business.ID,
			"name":     user.Business.Name,
			"slug":     user.Business.Slug,
			"phone":    user.Business.Phone,
			"address":  user.Business.Address,
			"timezone": user.Business.Timezone,
		},
	}
}
