package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/dto"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(
	repo domain.Repository,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo: repo,
	}
}

// Execute lists the appointments starting on the calendar date of `date`,
// read in the professional's timezone.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	professionalID uint,
	businessID uint,
	branchID *uint,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	pro, err := uc.repo.GetProfessionalInBusiness(ctx, businessID, professionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	loc := timezone.ForProfessional(pro)

	start := time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		0, 0, 0, 0,
		loc,
	)
	end := start.AddDate(0, 0, 1)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		professionalID,
		branchID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	return toListDTO(appointments, loc), nil
}

func toListDTO(appointments []models.Appointment, loc *time.Location) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:          ap.ID,
			StartTime:   ap.StartTime.In(loc),
			EndTime:     ap.EndTime.In(loc),
			Status:      ap.Status,
			Occupying:   domain.IsOccupying(domain.Status(ap.Status)),
			BranchID:    ap.BranchID,
			ClientName:  ap.Client.Name,
			ClientPhone: ap.Client.Phone,
			ServiceName: ap.Service.Name,
			Notes:       ap.Notes,
		})
	}
	return out
}
