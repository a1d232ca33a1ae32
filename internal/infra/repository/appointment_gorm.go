package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// AppointmentGormRepository stores every time as UTC. Callers convert to the
// professional's timezone for display.
type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Business
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBusinessByID(
	ctx context.Context,
	id uint,
) (*models.Business, error) {

	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *AppointmentGormRepository) GetBusinessBySlug(
	ctx context.Context,
	slug string,
) (*models.Business, error) {

	var business models.Business
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// --------------------------------------------------
// Professional
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessionalInBusiness(
	ctx context.Context,
	businessID uint,
	professionalID uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Business").
		Where("id = ? AND business_id = ?", professionalID, businessID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDefaultProfessional is used by single-professional businesses whose
// public page does not ask the client to pick someone.
func (r *AppointmentGormRepository) GetDefaultProfessional(
	ctx context.Context,
	businessID uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Business").
		Where("business_id = ?", businessID).
		Order("id ASC").
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// --------------------------------------------------
// Branch
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBranch(
	ctx context.Context,
	businessID uint,
	branchID uint,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ? AND active = ?", branchID, businessID, true).
		First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	businessID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	businessID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND phone = ?", businessID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = models.Client{
		BusinessID: businessID,
		Name:       name,
		Phone:      phone,
		Email:      email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Appointment (try-reserve)
// --------------------------------------------------

// lockProfessional serialises writers for one professional until the
// transaction ends. SQLite ignores the locking clause; it has a single
// writer anyway.
func lockProfessional(tx *gorm.DB, professionalID uint) error {
	var pro models.User
	return tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", professionalID).
		First(&pro).Error
}

// hasOverlap applies the half-open rule against occupying appointments only.
func hasOverlap(
	tx *gorm.DB,
	professionalID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) (bool, error) {

	q := tx.
		Model(&models.Appointment{}).
		Where(
			"professional_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			professionalID,
			domain.OccupyingStatuses(),
			end.UTC(),
			start.UTC(),
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// commitErr maps a database refusal to conflict_on_commit.
func commitErr(err error) error {
	if err == nil {
		return nil
	}
	if httperr.IsExclusionConflict(err) {
		return domain.ErrConflictOnCommit
	}
	return err
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	ap.StartTime = ap.StartTime.UTC()
	ap.EndTime = ap.EndTime.UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProfessional(tx, ap.ProfessionalID); err != nil {
			return fmt.Errorf("lock professional: %w", err)
		}

		if domain.IsOccupying(domain.Status(ap.Status)) {
			taken, err := hasOverlap(tx, ap.ProfessionalID, ap.StartTime, ap.EndTime, 0)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrConflictOnCommit
			}
		}

		return tx.Omit(clause.Associations).Create(ap).Error
	})

	return commitErr(err)
}

func (r *AppointmentGormRepository) UpdateAppointmentTime(
	ctx context.Context,
	appointmentID uint,
	professionalID uint,
	start time.Time,
	end time.Time,
	updatedBy *uint,
) (*models.Appointment, error) {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProfessional(tx, professionalID); err != nil {
			return fmt.Errorf("lock professional: %w", err)
		}

		var ap models.Appointment
		if err := tx.
			Where("id = ? AND professional_id = ?", appointmentID, professionalID).
			First(&ap).Error; err != nil {
			return err
		}

		if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
			return err
		}

		taken, err := hasOverlap(tx, professionalID, start, end, appointmentID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrConflictOnCommit
		}

		return tx.Model(&ap).Updates(map[string]any{
			"start_time":    start.UTC(),
			"end_time":      end.UTC(),
			"updated_by_id": updatedBy,
		}).Error
	})
	if err := commitErr(err); err != nil {
		return nil, err
	}

	return r.GetAppointmentForProfessional(ctx, appointmentID, professionalID)
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentForProfessional(
	ctx context.Context,
	appointmentID uint,
	professionalID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where("id = ? AND professional_id = ?", appointmentID, professionalID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

// UpdateAppointmentStatus writes only the status columns, and only while the
// stored status is still previous. Times are never touched here, so a
// reschedule that committed in between is kept.
func (r *AppointmentGormRepository) UpdateAppointmentStatus(
	ctx context.Context,
	ap *models.Appointment,
	previous string,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, previous).
		Updates(map[string]any{
			"status":        ap.Status,
			"cancelled_at":  ap.CancelledAt,
			"completed_at":  ap.CompletedAt,
			"updated_by_id": ap.UpdatedByID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

// ListAppointmentsForPeriod returns appointments of every status starting in
// [start, end). A branch filter keeps only that branch's appointments.
func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	professionalID uint,
	branchID *uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"professional_id = ? AND start_time >= ? AND start_time < ?",
			professionalID,
			start.UTC(),
			end.UTC(),
		)
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
