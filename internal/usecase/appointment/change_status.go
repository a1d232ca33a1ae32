package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// ChangeAppointmentStatus runs confirm, start, complete, cancel and no-show.
// None of them can create an overlap, so they skip the availability check.
type ChangeAppointmentStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewChangeAppointmentStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ChangeAppointmentStatus {
	return &ChangeAppointmentStatus{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *ChangeAppointmentStatus) Execute(
	ctx context.Context,
	businessID uint,
	professionalID uint,
	appointmentID uint,
	action domain.Action,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, appointmentID, professionalID)
	if err != nil || ap.BusinessID != businessID {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	previous := ap.Status
	if err := domain.Transition(ap, action, uc.now().UTC()); err != nil {
		return nil, err
	}
	ap.UpdatedByID = &professionalID

	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, previous); err != nil {
		return nil, err
	}

	// Reload so the response carries the stored times.
	ap, err = uc.repo.GetAppointmentForProfessional(ctx, appointmentID, professionalID)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &professionalID,
		Action:     action.AuditName(),
		Entity:     "appointment",
		EntityID:   &ap.ID,
		Metadata: map[string]any{
			"from": previous,
			"to":   ap.Status,
		},
	})

	return ap, nil
}
