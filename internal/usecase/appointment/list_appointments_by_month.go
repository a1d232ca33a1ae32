package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/dto"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

type ListAppointmentsByMonth struct {
	repo appointment.Repository
}

func NewListAppointmentsByMonth(
	repo appointment.Repository,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo: repo,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	professionalID uint,
	businessID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	pro, err := uc.repo.GetProfessionalInBusiness(ctx, businessID, professionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	loc := timezone.ForProfessional(pro)

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		professionalID,
		nil,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	return toListDTO(appointments, loc), nil
}
