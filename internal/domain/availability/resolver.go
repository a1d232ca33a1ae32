package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// WorkingHoursResolver turns weekly rules plus date exceptions into the open
// windows of one calendar date.
type WorkingHoursResolver struct {
	src    RuleSource
	logger zerolog.Logger
}

func NewWorkingHoursResolver(src RuleSource, logger zerolog.Logger) *WorkingHoursResolver {
	return &WorkingHoursResolver{
		src:    src,
		logger: logger.With().Str("component", "working_hours_resolver").Logger(),
	}
}

// OpenWindows returns the ordered, disjoint open windows for date. Only the
// calendar date of `date` (in its own location) is used.
func (r *WorkingHoursResolver) OpenWindows(
	ctx context.Context,
	professionalID uint,
	branchID *uint,
	date time.Time,
) ([]Window, error) {

	rules, err := r.src.GetWorkingHoursRules(ctx, professionalID, branchID)
	if err != nil {
		return nil, fmt.Errorf("get working hours: %w", err)
	}

	exceptions, err := r.src.GetScheduleExceptions(ctx, professionalID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("get schedule exceptions: %w", err)
	}

	windows, problems := ResolveWindows(rules, exceptions, date.Weekday(), branchID)
	for _, p := range problems {
		r.logger.Warn().
			Uint("professional_id", professionalID).
			Str("date", date.Format("2006-01-02")).
			Err(p).
			Msg("ignoring malformed schedule entry")
	}

	return windows, nil
}

// OpenIntervals anchors OpenWindows to the date that starts at midnight.
func (r *WorkingHoursResolver) OpenIntervals(
	ctx context.Context,
	professionalID uint,
	branchID *uint,
	midnight time.Time,
) ([]Interval, error) {

	windows, err := r.OpenWindows(ctx, professionalID, branchID, midnight)
	if err != nil {
		return nil, err
	}

	out := make([]Interval, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.On(midnight))
	}
	return out, nil
}

// ResolveWindows is the pure part of the resolver. Malformed rules and
// exceptions never add availability; they are reported in problems.
//
// Precedence: a whole-day block empties the date; extra hours are unioned
// with the weekly windows; partial blocks are cut out last.
func ResolveWindows(
	rules []models.WorkingHours,
	exceptions []models.ScheduleException,
	weekday time.Weekday,
	branchID *uint,
) (windows []Window, problems []error) {

	var extra []Window
	var cuts []Window

	for _, ex := range exceptions {
		switch ex.Kind {
		case models.ExceptionBlocked:
			if ex.WholeDay() {
				return nil, problems
			}
			w, err := NewWindow(ex.StartTime, ex.EndTime)
			if err != nil {
				// A block we cannot read closes the whole day.
				problems = append(problems, fmt.Errorf("exception %d: %w", ex.ID, err))
				return nil, problems
			}
			cuts = append(cuts, w)

		case models.ExceptionExtraHours:
			w, err := NewWindow(ex.StartTime, ex.EndTime)
			if err != nil {
				problems = append(problems, fmt.Errorf("exception %d: %w", ex.ID, err))
				continue
			}
			extra = append(extra, w)

		default:
			problems = append(problems, fmt.Errorf("exception %d: unknown kind %q", ex.ID, ex.Kind))
		}
	}

	for _, rule := range rules {
		if !rule.Active || rule.Weekday != int(weekday) || !branchMatches(rule.BranchID, branchID) {
			continue
		}

		w, err := NewWindow(rule.StartTime, rule.EndTime)
		if err != nil {
			problems = append(problems, fmt.Errorf("working hours %d: %w", rule.ID, err))
			continue
		}

		parts := []Window{w}
		if rule.LunchStart != "" && rule.LunchEnd != "" {
			lunch, err := NewWindow(rule.LunchStart, rule.LunchEnd)
			if err != nil {
				problems = append(problems, fmt.Errorf("working hours %d lunch: %w", rule.ID, err))
			} else {
				parts = SubtractWindow(parts, lunch)
			}
		}
		windows = append(windows, parts...)
	}

	windows = MergeWindows(append(windows, extra...))
	for _, cut := range cuts {
		windows = SubtractWindow(windows, cut)
	}

	return windows, problems
}

// A rule without a branch applies everywhere. With no branch requested every
// rule counts.
func branchMatches(ruleBranch, requested *uint) bool {
	if ruleBranch == nil || requested == nil {
		return true
	}
	return *ruleBranch == *requested
}
