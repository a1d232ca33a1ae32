package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
)

// AppointmentIndex answers "when is the professional already busy".
type AppointmentIndex struct {
	src AppointmentSource
}

func NewAppointmentIndex(src AppointmentSource) *AppointmentIndex {
	return &AppointmentIndex{src: src}
}

// BusyIntervals returns occupying appointments intersecting [rangeStart,
// rangeEnd), sorted by start. The appointment excludeAppointmentID is left
// out so it never conflicts with itself while being rescheduled. A nil
// branchID means every branch: a professional cannot be in two places.
func (x *AppointmentIndex) BusyIntervals(
	ctx context.Context,
	professionalID uint,
	branchID *uint,
	rangeStart time.Time,
	rangeEnd time.Time,
	excludeAppointmentID *uint,
) ([]Interval, error) {

	apps, err := x.src.GetOccupyingAppointments(ctx, professionalID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("get occupying appointments: %w", err)
	}

	window := Interval{Start: rangeStart, End: rangeEnd}
	out := make([]Interval, 0, len(apps))
	for _, ap := range apps {
		if excludeAppointmentID != nil && ap.ID == *excludeAppointmentID {
			continue
		}
		if !appointment.IsOccupying(appointment.Status(ap.Status)) {
			continue
		}
		if branchID != nil && ap.BranchID != nil && *ap.BranchID != *branchID {
			continue
		}

		iv := Interval{Start: ap.StartTime, End: ap.EndTime}
		if !iv.End.After(iv.Start) || !iv.Overlaps(window) {
			continue
		}
		out = append(out, iv)
	}

	sortIntervals(out)
	return out, nil
}
