package calendar

import (
	"context"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
)

type GetCalendarStatisticsInput struct {
	ProfessionalID uint
	From           string
	To             string
}

type GetCalendarStatistics struct {
	engine Engine
	pros   availability.ProfessionalSource
}

func NewGetCalendarStatistics(engine Engine, pros availability.ProfessionalSource) *GetCalendarStatistics {
	return &GetCalendarStatistics{engine: engine, pros: pros}
}

func (uc *GetCalendarStatistics) Execute(
	ctx context.Context,
	in GetCalendarStatisticsInput,
) (*availability.Statistics, error) {

	from, to, err := dateRange(ctx, uc.pros, in.ProfessionalID, in.From, in.To)
	if err != nil {
		return nil, err
	}

	return uc.engine.Statistics(ctx, in.ProfessionalID, from, to)
}
