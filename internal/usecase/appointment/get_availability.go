package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/dto"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

// SlotLister is the part of the availability engine slot listing needs.
type SlotLister interface {
	Enumerate(ctx context.Context, req availability.SlotRequest) ([]time.Time, error)
}

type GetAvailabilityInput struct {
	BusinessID     uint
	ProfessionalID uint
	BranchID       *uint
	ServiceID      uint
	Date           string

	// Public hides slots inside the business minimum advance.
	Public bool
}

// GetAvailability lists the start times a service fits on a date.
type GetAvailability struct {
	repo  domain.Repository
	slots SlotLister
	now   func() time.Time
}

func NewGetAvailability(repo domain.Repository, slots SlotLister) *GetAvailability {
	return &GetAvailability{repo: repo, slots: slots, now: time.Now}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in GetAvailabilityInput,
) ([]dto.TimeSlotDTO, error) {

	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, httperr.ErrBusiness("business_not_found")
	}

	pro, err := resolveProfessional(ctx, uc.repo, business.ID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	service, err := uc.repo.GetService(ctx, business.ID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	loc := timezone.ForProfessional(pro)
	date, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	starts, err := uc.slots.Enumerate(ctx, availability.SlotRequest{
		ProfessionalID:  pro.ID,
		BranchID:        in.BranchID,
		Date:            date,
		DurationMinutes: service.DurationMin,
	})
	if err != nil {
		return nil, err
	}

	var earliest time.Time
	if in.Public {
		minAdvance := business.MinAdvanceMinutes
		if minAdvance <= 0 {
			minAdvance = defaultMinAdvanceMinutes
		}
		earliest = uc.now().Add(time.Duration(minAdvance) * time.Minute)
	}

	duration := time.Duration(service.DurationMin) * time.Minute
	out := make([]dto.TimeSlotDTO, 0, len(starts))
	for _, s := range starts {
		if s.Before(earliest) {
			continue
		}
		s = s.In(loc)
		out = append(out, dto.TimeSlotDTO{
			Start:    s.Format("15:04"),
			End:      s.Add(duration).Format("15:04"),
			StartsAt: s,
		})
	}

	return out, nil
}
