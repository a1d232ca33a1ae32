package appointment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/business-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

type RescheduleAppointmentInput struct {
	BusinessID     uint
	ProfessionalID uint
	AppointmentID  uint

	Date string
	Time string

	UpdatedBy *uint
}

// RescheduleAppointment moves an occupying appointment, keeping its length.
// The appointment's own current slot never counts as a conflict.
type RescheduleAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	reserver
}

func NewRescheduleAppointment(
	repo domain.Repository,
	validator BookingValidator,
	locker lock.Locker,
	audit *audit.Dispatcher,
	logger zerolog.Logger,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:  repo,
		audit: audit,
		reserver: reserver{
			validator: validator,
			locker:    locker,
			logger:    logger.With().Str("usecase", "reschedule_appointment").Logger(),
		},
	}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, error) {

	pro, err := resolveProfessional(ctx, uc.repo, in.BusinessID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, in.AppointmentID, pro.ID)
	if err != nil || ap.BusinessID != in.BusinessID {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	start, err := parseLocalDateTime(pro, in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	end := start.Add(ap.EndTime.Sub(ap.StartTime))

	from := ap.StartTime

	var moved *models.Appointment
	err = uc.reserve(ctx, availability.ValidationRequest{
		ProfessionalID:       pro.ID,
		BranchID:             ap.BranchID,
		StartTime:            start,
		EndTime:              end,
		ExcludeAppointmentID: &ap.ID,
	}, func() error {
		var err error
		moved, err = uc.repo.UpdateAppointmentTime(ctx, ap.ID, pro.ID, start, end, in.UpdatedBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UpdatedBy,
		Action:     "appointment_rescheduled",
		Entity:     "appointment",
		EntityID:   &moved.ID,
		Metadata: map[string]any{
			"from": from,
			"to":   moved.StartTime,
		},
	})

	return moved, nil
}
