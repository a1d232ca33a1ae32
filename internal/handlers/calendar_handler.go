package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/usecase/calendar"
)

type CalendarHandler struct {
	events     *calendar.GetCalendarEvents
	statistics *calendar.GetCalendarStatistics
}

func NewCalendarHandler(
	events *calendar.GetCalendarEvents,
	statistics *calendar.GetCalendarStatistics,
) *CalendarHandler {
	return &CalendarHandler{events: events, statistics: statistics}
}

// ======================================================
// EVENTS + AVAILABILITY
// ======================================================

func (h *CalendarHandler) Events(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}

	branchID, ok := optionalUintQuery(c, "branch_id")
	if !ok {
		httperr.BadRequest(c, "invalid_branch_id", "Unidade inválida.")
		return
	}

	view, err := h.events.Execute(
		c.Request.Context(),
		calendar.GetCalendarEventsInput{
			ProfessionalID: currentUserID(c),
			BranchID:       branchID,
			From:           from,
			To:             to,
		},
	)
	if err != nil {
		writeError(c, err, "calendar_failed")
		return
	}

	c.JSON(http.StatusOK, view)
}

// ======================================================
// STATISTICS
// ======================================================

func (h *CalendarHandler) Statistics(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}

	stats, err := h.statistics.Execute(
		c.Request.Context(),
		calendar.GetCalendarStatisticsInput{
			ProfessionalID: currentUserID(c),
			From:           from,
			To:             to,
		},
	)
	if err != nil {
		writeError(c, err, "statistics_failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":       from,
		"to":         to,
		"statistics": stats,
	})
}

func dateRangeQuery(c *gin.Context) (string, string, bool) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		httperr.BadRequest(c, "missing_range", "Informe as datas inicial e final.")
		return "", "", false
	}
	return from, to, true
}
