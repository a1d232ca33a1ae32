package calendar

import (
	"context"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
)

type GetCalendarEventsInput struct {
	ProfessionalID uint
	BranchID       *uint

	// Inclusive dates, "2006-01-02".
	From string
	To   string
}

type GetCalendarEvents struct {
	engine Engine
	pros   availability.ProfessionalSource
}

func NewGetCalendarEvents(engine Engine, pros availability.ProfessionalSource) *GetCalendarEvents {
	return &GetCalendarEvents{engine: engine, pros: pros}
}

func (uc *GetCalendarEvents) Execute(
	ctx context.Context,
	in GetCalendarEventsInput,
) (*availability.CalendarView, error) {

	from, to, err := dateRange(ctx, uc.pros, in.ProfessionalID, in.From, in.To)
	if err != nil {
		return nil, err
	}

	return uc.engine.EventsAndAvailability(ctx, availability.CalendarFilter{
		ProfessionalID: in.ProfessionalID,
		BranchID:       in.BranchID,
		From:           from,
		To:             to,
	})
}
