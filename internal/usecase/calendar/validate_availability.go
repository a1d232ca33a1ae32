package calendar

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
)

type ValidateAvailabilityInput struct {
	ProfessionalID       uint
	BranchID             *uint
	StartTime            time.Time
	EndTime              time.Time
	ExcludeAppointmentID *uint
}

// ValidateAvailability answers "could this interval be booked right now"
// without writing anything.
type ValidateAvailability struct {
	engine Engine
}

func NewValidateAvailability(engine Engine) *ValidateAvailability {
	return &ValidateAvailability{engine: engine}
}

func (uc *ValidateAvailability) Execute(
	ctx context.Context,
	in ValidateAvailabilityInput,
) (availability.ValidationResult, error) {
	return uc.engine.Validate(ctx, availability.ValidationRequest{
		ProfessionalID:       in.ProfessionalID,
		BranchID:             in.BranchID,
		StartTime:            in.StartTime,
		EndTime:              in.EndTime,
		ExcludeAppointmentID: in.ExcludeAppointmentID,
	})
}
