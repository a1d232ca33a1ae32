package availability

import (
	"context"
	"time"
)

type SlotRequest struct {
	ProfessionalID  uint
	BranchID        *uint
	Date            time.Time
	DurationMinutes int

	// StepMinutes defaults to DurationMinutes. A smaller step yields
	// overlapping candidates for flexible-start UIs.
	StepMinutes int

	// IncludePast keeps start times before now; only honoured when the
	// policy allows past bookings.
	IncludePast bool
}

// SlotEnumerator lists bookable start times for a date.
type SlotEnumerator struct {
	pros     ProfessionalSource
	resolver *WorkingHoursResolver
	index    *AppointmentIndex
	policy   Policy
}

func NewSlotEnumerator(
	pros ProfessionalSource,
	resolver *WorkingHoursResolver,
	index *AppointmentIndex,
	policy Policy,
) *SlotEnumerator {
	return &SlotEnumerator{
		pros:     pros,
		resolver: resolver,
		index:    index,
		policy:   policy,
	}
}

// Enumerate returns ordered start times t with [t, t+duration) inside a free
// interval of the date. The date is read as a calendar date (year, month,
// day) in the professional's timezone.
func (e *SlotEnumerator) Enumerate(ctx context.Context, req SlotRequest) ([]time.Time, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	step := req.StepMinutes
	if step <= 0 {
		step = req.DurationMinutes
	}

	free, loc, err := e.freeIntervals(ctx, req)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	stride := time.Duration(step) * time.Minute

	keepPast := req.IncludePast && e.policy.AllowPastBookings
	now := e.policy.now()

	slots := []time.Time{}
	for _, f := range free {
		for t := f.Start; !t.Add(duration).After(f.End); t = t.Add(stride) {
			if !keepPast && t.Before(now) {
				continue
			}
			slots = append(slots, t.In(loc))
		}
	}

	return slots, nil
}

// FreeIntervals is open time minus busy time for the requested date.
func (e *SlotEnumerator) FreeIntervals(ctx context.Context, req SlotRequest) ([]Interval, error) {
	free, _, err := e.freeIntervals(ctx, req)
	return free, err
}

func (e *SlotEnumerator) freeIntervals(ctx context.Context, req SlotRequest) ([]Interval, *time.Location, error) {
	loc, err := locate(ctx, e.pros, req.ProfessionalID)
	if err != nil {
		return nil, nil, err
	}

	y, m, d := req.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	next := day.AddDate(0, 0, 1)

	open, err := e.resolver.OpenIntervals(ctx, req.ProfessionalID, req.BranchID, day)
	if err != nil {
		return nil, nil, err
	}
	if len(open) == 0 {
		return nil, loc, nil
	}

	busy, err := e.index.BusyIntervals(ctx, req.ProfessionalID, nil, day, next, nil)
	if err != nil {
		return nil, nil, err
	}

	return Subtract(open, busy), loc, nil
}
