package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// AuditLogQuery holds the optional filters of GET /audit-logs. From and To
// are inclusive UTC dates, matching created_at.
type AuditLogQuery struct {
	Action   string `form:"action" binding:"max=64"`
	Entity   string `form:"entity" binding:"max=64"`
	EntityID *uint  `form:"entity_id"`
	From     string `form:"from" binding:"omitempty,date"`
	To       string `form:"to" binding:"omitempty,date"`
	Page     int    `form:"page,default=1" binding:"gte=1"`
	Limit    int    `form:"limit,default=50" binding:"gte=1,lte=200"`
}

func (q AuditLogQuery) apply(tx *gorm.DB) *gorm.DB {
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.Entity != "" {
		tx = tx.Where("entity = ?", q.Entity)
	}
	if q.EntityID != nil {
		tx = tx.Where("entity_id = ?", *q.EntityID)
	}
	// Already validated by the binding.
	if from, err := time.Parse("2006-01-02", q.From); err == nil {
		tx = tx.Where("created_at >= ?", from)
	}
	if to, err := time.Parse("2006-01-02", q.To); err == nil {
		tx = tx.Where("created_at < ?", to.AddDate(0, 0, 1))
	}
	return tx
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	var query AuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.BadRequest(c, "invalid_query", "Filtros inválidos.")
		return
	}

	// 🔒 sempre limitado ao negócio do token
	q := query.apply(
		h.db.Model(&models.AuditLog{}).
			Where("business_id = ?", currentBusinessID(c)),
	)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Erro ao contar logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(query.Limit).
		Offset((query.Page - 1) * query.Limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	httpresp.Page(c, logs, query.Page, query.Limit, total)
}
