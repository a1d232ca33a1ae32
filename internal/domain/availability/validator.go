package availability

import (
	"context"
	"time"
)

type ValidationRequest struct {
	ProfessionalID       uint
	BranchID             *uint
	StartTime            time.Time
	EndTime              time.Time
	ExcludeAppointmentID *uint
}

type ValidationResult struct {
	IsValid   bool       `json:"is_valid"`
	Reason    Reason     `json:"reason,omitempty"`
	Conflicts []Interval `json:"conflicts,omitempty"`
}

func valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func rejected(r Reason) ValidationResult {
	return ValidationResult{IsValid: false, Reason: r}
}

// Validator decides whether a candidate interval can be booked.
type Validator struct {
	pros     ProfessionalSource
	resolver *WorkingHoursResolver
	index    *AppointmentIndex
	policy   Policy
}

func NewValidator(
	pros ProfessionalSource,
	resolver *WorkingHoursResolver,
	index *AppointmentIndex,
	policy Policy,
) *Validator {
	return &Validator{
		pros:     pros,
		resolver: resolver,
		index:    index,
		policy:   policy,
	}
}

// Validate returns a verdict; err is only set for infrastructure failures.
// Working hours are checked before conflicts.
func (v *Validator) Validate(ctx context.Context, req ValidationRequest) (ValidationResult, error) {

	if !req.EndTime.After(req.StartTime) {
		return rejected(ReasonInvalidRange), nil
	}

	if !v.policy.AllowPastBookings && req.StartTime.Before(v.policy.now()) {
		return rejected(ReasonPastBooking), nil
	}

	loc, err := locate(ctx, v.pros, req.ProfessionalID)
	if err != nil {
		return ValidationResult{}, err
	}

	candidate := Interval{Start: req.StartTime, End: req.EndTime}.In(loc)
	day, next := dayBounds(candidate.Start, loc)
	if candidate.End.After(next) {
		return rejected(ReasonCrossesDayBoundary), nil
	}

	open, err := v.resolver.OpenIntervals(ctx, req.ProfessionalID, req.BranchID, day)
	if err != nil {
		return ValidationResult{}, err
	}
	if !containedInAny(candidate, open) {
		return rejected(ReasonOutsideWorkingHours), nil
	}

	busy, err := v.index.BusyIntervals(ctx, req.ProfessionalID, nil, day, next, req.ExcludeAppointmentID)
	if err != nil {
		return ValidationResult{}, err
	}

	var conflicts []Interval
	for _, b := range busy {
		if candidate.Overlaps(b) {
			conflicts = append(conflicts, b.In(loc))
		}
	}
	if len(conflicts) > 0 {
		res := rejected(ReasonSlotTaken)
		res.Conflicts = conflicts
		return res, nil
	}

	return valid(), nil
}

// open is merged, so containment in the union is containment in one member.
func containedInAny(candidate Interval, open []Interval) bool {
	for _, o := range open {
		if o.Contains(candidate) {
			return true
		}
	}
	return false
}
