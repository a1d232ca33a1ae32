package calendar

import (
	"context"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// ServiceSource loads a service of one business.
type ServiceSource interface {
	GetService(ctx context.Context, businessID uint, serviceID uint) (*models.Service, error)
}

type GetAvailableSlotsInput struct {
	BusinessID     uint
	ProfessionalID uint
	BranchID       *uint
	Date           string
	ServiceID      uint
	// Zero steps by the service duration.
	StepMinutes int
	IncludePast bool
}

type AvailableSlots struct {
	Date            string                  `json:"date"`
	ServiceID       uint                    `json:"service_id"`
	DurationMinutes int                     `json:"duration_minutes"`
	Slots           []time.Time             `json:"slots"`
	Free            []availability.Interval `json:"free"`
}

type GetAvailableSlots struct {
	engine   Engine
	services ServiceSource
}

func NewGetAvailableSlots(engine Engine, services ServiceSource) *GetAvailableSlots {
	return &GetAvailableSlots{engine: engine, services: services}
}

func (uc *GetAvailableSlots) Execute(
	ctx context.Context,
	in GetAvailableSlotsInput,
) (*AvailableSlots, error) {

	// Only year, month and day are used; the engine anchors them in the
	// professional's timezone.
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	// The service's duration drives the grid.
	service, err := uc.services.GetService(ctx, in.BusinessID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	req := availability.SlotRequest{
		ProfessionalID:  in.ProfessionalID,
		BranchID:        in.BranchID,
		Date:            date,
		DurationMinutes: service.DurationMin,
		StepMinutes:     in.StepMinutes,
		IncludePast:     in.IncludePast,
	}

	slots, err := uc.engine.Enumerate(ctx, req)
	if err != nil {
		return nil, err
	}

	free, err := uc.engine.FreeIntervals(ctx, req)
	if err != nil {
		return nil, err
	}
	if free == nil {
		free = []availability.Interval{}
	}

	return &AvailableSlots{
		Date:            in.Date,
		ServiceID:       service.ID,
		DurationMinutes: service.DurationMin,
		Slots:           slots,
		Free:            free,
	}, nil
}
