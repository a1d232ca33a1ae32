package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

// Reason is the machine readable verdict of a failed validation.
type Reason string

const (
	ReasonInvalidRange        Reason = "invalid_range"
	ReasonPastBooking         Reason = "past_booking"
	ReasonCrossesDayBoundary  Reason = "crosses_day_boundary"
	ReasonOutsideWorkingHours Reason = "outside_working_hours"
	ReasonSlotTaken           Reason = "slot_taken"
	ReasonConflictOnCommit    Reason = "conflict_on_commit"
)

func (r Reason) Err() error {
	return httperr.ErrBusiness(string(r))
}

var (
	ErrInvalidDuration = httperr.ErrBusiness("invalid_duration")
	ErrRangeTooLarge   = httperr.ErrBusiness("range_too_large")
	ErrInvalidRange    = ReasonInvalidRange.Err()
)

const DefaultMaxRangeDays = 93

type Policy struct {
	// AllowPastBookings lets back-office staff record appointments that
	// already happened.
	AllowPastBookings bool

	// MaxRangeDays caps calendar and statistics queries.
	MaxRangeDays int

	Now func() time.Time
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Policy) maxRangeDays() int {
	if p.MaxRangeDays <= 0 {
		return DefaultMaxRangeDays
	}
	return p.MaxRangeDays
}

func locate(ctx context.Context, src ProfessionalSource, professionalID uint) (*time.Location, error) {
	pro, err := src.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("get professional %d: %w", professionalID, err)
	}
	return timezone.ForProfessional(pro), nil
}

// dayBounds returns local midnight of t's date and the following midnight.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	day := timezone.StartOfDay(t, loc)
	return day, day.AddDate(0, 0, 1)
}
