package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

// BookingValidator is the part of the availability engine a booking needs.
type BookingValidator interface {
	Validate(ctx context.Context, req availability.ValidationRequest) (availability.ValidationResult, error)
}

// A store-side conflict means another booking won the race after our
// validation; one more validate+write settles it.
const maxReserveAttempts = 2

type reserver struct {
	validator BookingValidator
	locker    lock.Locker
	logger    zerolog.Logger
}

// reserve validates req and, when it passes, runs write under the
// professional's booking lock. A conflict_on_commit from write triggers a
// single re-validation and retry.
func (r reserver) reserve(
	ctx context.Context,
	req availability.ValidationRequest,
	write func() error,
) error {

	var err error
	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		var res availability.ValidationResult
		res, err = r.validator.Validate(ctx, req)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return res.Reason.Err()
		}

		err = r.locked(ctx, req.ProfessionalID, write)
		if !errors.Is(err, domain.ErrConflictOnCommit) {
			return err
		}

		r.logger.Warn().
			Uint("professional_id", req.ProfessionalID).
			Time("start", req.StartTime).
			Int("attempt", attempt).
			Msg("booking lost a race, re-validating")
	}
	return err
}

func (r reserver) locked(ctx context.Context, professionalID uint, write func() error) error {
	release, err := r.locker.Acquire(ctx, professionalID)
	if err != nil {
		// The transactional re-check still protects the write.
		r.logger.Warn().Err(err).Uint("professional_id", professionalID).Msg("booking lock unavailable")
		return write()
	}
	defer release()
	return write()
}

// resolveProfessional picks the requested professional, or the business
// default when none is given.
func resolveProfessional(
	ctx context.Context,
	repo domain.Repository,
	businessID uint,
	professionalID uint,
) (*models.User, error) {

	var (
		pro *models.User
		err error
	)
	if professionalID == 0 {
		pro, err = repo.GetDefaultProfessional(ctx, businessID)
	} else {
		pro, err = repo.GetProfessionalInBusiness(ctx, businessID, professionalID)
	}
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}
	return pro, nil
}

// parseLocalDateTime reads "2006-01-02" + "15:04" as wall clock in the
// professional's timezone.
func parseLocalDateTime(pro *models.User, date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(
		"2006-01-02 15:04",
		date+" "+clock,
		timezone.ForProfessional(pro),
	)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date_or_time")
	}
	return t, nil
}
