package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
)

type CalendarFilter struct {
	ProfessionalID uint
	BranchID       *uint
	From           time.Time
	To             time.Time
}

type CalendarEvent struct {
	ID          uint      `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	Occupying   bool      `json:"occupying"`
	BranchID    *uint     `json:"branch_id,omitempty"`
	ClientName  string    `json:"client_name"`
	ServiceName string    `json:"service_name"`
	Notes       string    `json:"notes,omitempty"`
}

type DayAvailability struct {
	Date        string     `json:"date"`
	Open        []Interval `json:"open"`
	Busy        []Interval `json:"busy"`
	Free        []Interval `json:"free"`
	OpenMinutes int        `json:"open_minutes"`
	FreeMinutes int        `json:"free_minutes"`
}

type CalendarView struct {
	Events       []CalendarEvent   `json:"events"`
	Availability []DayAvailability `json:"availability"`
}

type Statistics struct {
	TotalSlots       int     `json:"total_slots"`
	BookedSlots      int     `json:"booked_slots"`
	UtilizationRate  float64 `json:"utilization_rate"`
	CompletedCount   int     `json:"completed_count"`
	CancelledCount   int     `json:"cancelled_count"`
	NoShowCount      int     `json:"no_show_count"`
	OpenMinutes      int     `json:"open_minutes"`
	BookedMinutes    int     `json:"booked_minutes"`
	CompletionRate   float64 `json:"completion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// CalendarAggregator composes the resolver and the index into read views.
// It keeps no state between calls.
type CalendarAggregator struct {
	pros     ProfessionalSource
	apps     AppointmentSource
	resolver *WorkingHoursResolver
	index    *AppointmentIndex
	policy   Policy
}

func NewCalendarAggregator(
	pros ProfessionalSource,
	apps AppointmentSource,
	resolver *WorkingHoursResolver,
	index *AppointmentIndex,
	policy Policy,
) *CalendarAggregator {
	return &CalendarAggregator{
		pros:     pros,
		apps:     apps,
		resolver: resolver,
		index:    index,
		policy:   policy,
	}
}

func (a *CalendarAggregator) EventsAndAvailability(ctx context.Context, f CalendarFilter) (*CalendarView, error) {
	loc, err := a.checkRange(ctx, f.ProfessionalID, f.From, f.To)
	if err != nil {
		return nil, err
	}

	apps, err := a.apps.ListAppointmentsForPeriod(ctx, f.ProfessionalID, f.BranchID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	view := &CalendarView{
		Events:       make([]CalendarEvent, 0, len(apps)),
		Availability: []DayAvailability{},
	}
	for _, ap := range apps {
		view.Events = append(view.Events, CalendarEvent{
			ID:          ap.ID,
			Start:       ap.StartTime.In(loc),
			End:         ap.EndTime.In(loc),
			Status:      ap.Status,
			Occupying:   appointment.IsOccupying(appointment.Status(ap.Status)),
			BranchID:    ap.BranchID,
			ClientName:  ap.Client.Name,
			ServiceName: ap.Service.Name,
			Notes:       ap.Notes,
		})
	}

	bounds := Interval{Start: f.From, End: f.To}
	err = eachDay(f.From, f.To, loc, func(day, next time.Time) error {
		open, busy, err := a.day(ctx, f.ProfessionalID, f.BranchID, day, next, bounds)
		if err != nil {
			return err
		}
		free := Subtract(open, busy)

		view.Availability = append(view.Availability, DayAvailability{
			Date:        day.Format("2006-01-02"),
			Open:        inLoc(open, loc),
			Busy:        inLoc(busy, loc),
			Free:        inLoc(free, loc),
			OpenMinutes: minutes(open),
			FreeMinutes: minutes(free),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Statistics walks every date of [rangeStart, rangeEnd). Utilization is
// occupying minutes that fall inside working hours over open minutes; it is
// 0 when nothing is open. BookedSlots also counts completed appointments but
// UtilizationRate does not, so a fully worked past period shows a high
// BookedSlots next to a low rate.
func (a *CalendarAggregator) Statistics(
	ctx context.Context,
	professionalID uint,
	rangeStart time.Time,
	rangeEnd time.Time,
) (*Statistics, error) {

	loc, err := a.checkRange(ctx, professionalID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	var openTotal, bookedTotal time.Duration
	bounds := Interval{Start: rangeStart, End: rangeEnd}

	err = eachDay(rangeStart, rangeEnd, loc, func(day, next time.Time) error {
		open, busy, err := a.day(ctx, professionalID, nil, day, next, bounds)
		if err != nil {
			return err
		}
		openTotal += sum(open)
		bookedTotal += OverlapDuration(open, MergeIntervals(busy))
		return nil
	})
	if err != nil {
		return nil, err
	}

	apps, err := a.apps.ListAppointmentsForPeriod(ctx, professionalID, nil, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	st := &Statistics{
		TotalSlots:    len(apps),
		OpenMinutes:   int(openTotal / time.Minute),
		BookedMinutes: int(bookedTotal / time.Minute),
	}
	for _, ap := range apps {
		switch s := appointment.Status(ap.Status); {
		case s == appointment.StatusCompleted:
			st.CompletedCount++
			st.BookedSlots++
		case s == appointment.StatusCancelled:
			st.CancelledCount++
		case s == appointment.StatusNoShow:
			st.NoShowCount++
		case appointment.IsOccupying(s):
			st.BookedSlots++
		}
	}

	if openTotal > 0 {
		st.UtilizationRate = float64(bookedTotal) / float64(openTotal)
	}
	if st.TotalSlots > 0 {
		st.CompletionRate = float64(st.CompletedCount) / float64(st.TotalSlots)
		st.CancellationRate = float64(st.CancelledCount) / float64(st.TotalSlots)
	}

	return st, nil
}

func (a *CalendarAggregator) checkRange(
	ctx context.Context,
	professionalID uint,
	from time.Time,
	to time.Time,
) (*time.Location, error) {

	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	loc, err := locate(ctx, a.pros, professionalID)
	if err != nil {
		return nil, err
	}

	// Reject huge ranges before walking them; DST days are at most 25h.
	maxDays := a.policy.maxRangeDays()
	if to.Sub(from) > time.Duration(maxDays+1)*24*time.Hour {
		return nil, ErrRangeTooLarge
	}

	days := 0
	_ = eachDay(from, to, loc, func(_, _ time.Time) error {
		days++
		return nil
	})
	if days > maxDays {
		return nil, ErrRangeTooLarge
	}

	return loc, nil
}

// day returns the open and busy intervals of one date clipped to bounds.
func (a *CalendarAggregator) day(
	ctx context.Context,
	professionalID uint,
	branchID *uint,
	day time.Time,
	next time.Time,
	bounds Interval,
) ([]Interval, []Interval, error) {

	open, err := a.resolver.OpenIntervals(ctx, professionalID, branchID, day)
	if err != nil {
		return nil, nil, err
	}
	// Busy time spans every branch, like the validator sees it.
	busy, err := a.index.BusyIntervals(ctx, professionalID, nil, day, next, nil)
	if err != nil {
		return nil, nil, err
	}

	return clipAll(open, bounds), clipAll(busy, bounds), nil
}

// eachDay calls fn for every local date touched by [from, to).
func eachDay(from, to time.Time, loc *time.Location, fn func(day, next time.Time) error) error {
	day, next := dayBounds(from, loc)
	for day.Before(to) {
		if err := fn(day, next); err != nil {
			return err
		}
		day, next = next, next.AddDate(0, 0, 1)
	}
	return nil
}

func clipAll(in []Interval, bounds Interval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		if c, ok := iv.Clip(bounds); ok {
			out = append(out, c)
		}
	}
	return out
}

func inLoc(in []Interval, loc *time.Location) []Interval {
	out := make([]Interval, len(in))
	for i, iv := range in {
		out[i] = iv.In(loc)
	}
	return out
}

func sum(in []Interval) time.Duration {
	var d time.Duration
	for _, iv := range in {
		d += iv.Duration()
	}
	return d
}

func minutes(in []Interval) int {
	return int(sum(in) / time.Minute)
}
