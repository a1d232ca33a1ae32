package calendar

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

// Engine is what the calendar use cases need from the availability engine.
type Engine interface {
	Validate(ctx context.Context, req availability.ValidationRequest) (availability.ValidationResult, error)
	Enumerate(ctx context.Context, req availability.SlotRequest) ([]time.Time, error)
	FreeIntervals(ctx context.Context, req availability.SlotRequest) ([]availability.Interval, error)
	EventsAndAvailability(ctx context.Context, f availability.CalendarFilter) (*availability.CalendarView, error)
	Statistics(ctx context.Context, professionalID uint, rangeStart, rangeEnd time.Time) (*availability.Statistics, error)
}

// engineAdapter flattens *availability.Engine into Engine.
type engineAdapter struct {
	e *availability.Engine
}

func Adapt(e *availability.Engine) Engine {
	return engineAdapter{e: e}
}

func (a engineAdapter) Validate(ctx context.Context, req availability.ValidationRequest) (availability.ValidationResult, error) {
	return a.e.Validator.Validate(ctx, req)
}

func (a engineAdapter) Enumerate(ctx context.Context, req availability.SlotRequest) ([]time.Time, error) {
	return a.e.Slots.Enumerate(ctx, req)
}

func (a engineAdapter) FreeIntervals(ctx context.Context, req availability.SlotRequest) ([]availability.Interval, error) {
	return a.e.Slots.FreeIntervals(ctx, req)
}

func (a engineAdapter) EventsAndAvailability(ctx context.Context, f availability.CalendarFilter) (*availability.CalendarView, error) {
	return a.e.Calendar.EventsAndAvailability(ctx, f)
}

func (a engineAdapter) Statistics(ctx context.Context, professionalID uint, rangeStart, rangeEnd time.Time) (*availability.Statistics, error) {
	return a.e.Calendar.Statistics(ctx, professionalID, rangeStart, rangeEnd)
}

// dateRange reads inclusive "2006-01-02" dates in the professional's
// timezone and returns the half-open instant range [from 00:00, to+1 00:00).
func dateRange(
	ctx context.Context,
	pros availability.ProfessionalSource,
	professionalID uint,
	from string,
	to string,
) (time.Time, time.Time, error) {

	pro, err := pros.GetProfessional(ctx, professionalID)
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrBusiness("professional_not_found")
	}
	loc := timezone.ForProfessional(pro)

	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	end, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrBusiness("invalid_date")
	}

	return start, end.AddDate(0, 0, 1), nil
}
