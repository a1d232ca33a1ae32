package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// ErrConflictOnCommit is returned by the store when the transactional
// overlap re-check (or the database constraint) refuses the write.
var ErrConflictOnCommit = httperr.ErrBusiness("conflict_on_commit")

type Repository interface {
	// -------- Business --------
	GetBusinessByID(
		ctx context.Context,
		id uint,
	) (*models.Business, error)

	GetBusinessBySlug(
		ctx context.Context,
		slug string,
	) (*models.Business, error)

	// -------- Professional --------
	GetProfessionalInBusiness(
		ctx context.Context,
		businessID uint,
		professionalID uint,
	) (*models.User, error)

	GetDefaultProfessional(
		ctx context.Context,
		businessID uint,
	) (*models.User, error)

	// -------- Branch --------
	GetBranch(
		ctx context.Context,
		businessID uint,
		branchID uint,
	) (*models.Branch, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		businessID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		businessID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Appointment (try-reserve) --------

	// CreateAppointment inserts ap after re-checking, in the same
	// transaction, that no occupying appointment overlaps it.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// UpdateAppointmentTime moves an appointment under the same guarantee,
	// ignoring the appointment's own current slot.
	UpdateAppointmentTime(
		ctx context.Context,
		appointmentID uint,
		professionalID uint,
		start time.Time,
		end time.Time,
		updatedBy *uint,
	) (*models.Appointment, error)

	// -------- Appointment (state change) --------
	GetAppointmentForProfessional(
		ctx context.Context,
		appointmentID uint,
		professionalID uint,
	) (*models.Appointment, error)

	// UpdateAppointmentStatus persists a transition applied to ap. It fails
	// with invalid_state when the stored status is no longer previous.
	UpdateAppointmentStatus(
		ctx context.Context,
		ap *models.Appointment,
		previous string,
	) error

	// -------- Listing --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		professionalID uint,
		branchID *uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
