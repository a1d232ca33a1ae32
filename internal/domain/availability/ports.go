package availability

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// RuleSource supplies the professional's recurring rules and date overrides.
type RuleSource interface {
	GetWorkingHoursRules(
		ctx context.Context,
		professionalID uint,
		branchID *uint,
	) ([]models.WorkingHours, error)

	// GetScheduleExceptions returns every exception stored for date
	// ("2006-01-02"); an empty slice means none.
	GetScheduleExceptions(
		ctx context.Context,
		professionalID uint,
		date string,
	) ([]models.ScheduleException, error)
}

// AppointmentSource supplies appointments intersecting [start, end).
type AppointmentSource interface {
	GetOccupyingAppointments(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		professionalID uint,
		branchID *uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}

// ProfessionalSource resolves the professional, with Business loaded, so the
// engine can work in the professional's timezone.
type ProfessionalSource interface {
	GetProfessional(
		ctx context.Context,
		professionalID uint,
	) (*models.User, error)
}

type Source interface {
	RuleSource
	AppointmentSource
	ProfessionalSource
}
