package repository

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// --------------------------------------------------
// Availability engine collaborators
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessional(
	ctx context.Context,
	professionalID uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Business").
		First(&user, professionalID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWorkingHoursRules returns active rules. With a branch, rules bound to
// another branch are left out; rules without a branch always apply.
func (r *AppointmentGormRepository) GetWorkingHoursRules(
	ctx context.Context,
	professionalID uint,
	branchID *uint,
) ([]models.WorkingHours, error) {

	q := r.db.WithContext(ctx).
		Where("professional_id = ? AND active = ?", professionalID, true)
	if branchID != nil {
		q = q.Where("(branch_id = ? OR branch_id IS NULL)", *branchID)
	}

	var rules []models.WorkingHours
	if err := q.Order("weekday ASC, start_time ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AppointmentGormRepository) GetScheduleExceptions(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]models.ScheduleException, error) {

	var out []models.ScheduleException
	if err := r.db.WithContext(ctx).
		Where("professional_id = ? AND date = ?", professionalID, date).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetOccupyingAppointments narrows by status in SQL; the engine filters again
// with the same predicate.
func (r *AppointmentGormRepository) GetOccupyingAppointments(
	ctx context.Context,
	professionalID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "professional_id", "branch_id", "status", "start_time", "end_time").
		Where(
			"professional_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			professionalID,
			domain.OccupyingStatuses(),
			end.UTC(),
			start.UTC(),
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

var _ availability.Source = (*AppointmentGormRepository)(nil)
