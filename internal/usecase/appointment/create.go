package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/business-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BusinessID uint

	// Zero picks the business default professional.
	ProfessionalID uint
	BranchID       *uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceID uint

	Date  string
	Time  string
	Notes string

	// Public bookings come from clients: they enforce the business minimum
	// advance and start as pending. Staff bookings start confirmed.
	Public    bool
	CreatedBy *uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	reserver

	now func() time.Time
}

func NewCreateAppointment(
	repo domain.Repository,
	validator BookingValidator,
	locker lock.Locker,
	audit *audit.Dispatcher,
	logger zerolog.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
		reserver: reserver{
			validator: validator,
			locker:    locker,
			logger:    logger.With().Str("usecase", "create_appointment").Logger(),
		},
		now: time.Now,
	}
}

const defaultMinAdvanceMinutes = 120

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Negócio e profissional
	// --------------------------------------------------
	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, httperr.ErrBusiness("business_not_found")
	}

	pro, err := resolveProfessional(ctx, uc.repo, business.ID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	if in.BranchID != nil {
		if _, err := uc.repo.GetBranch(ctx, business.ID, *in.BranchID); err != nil {
			return nil, httperr.ErrBusiness("branch_not_found")
		}
	}

	// --------------------------------------------------
	// 2️⃣ Data / hora no timezone do profissional
	// --------------------------------------------------
	start, err := parseLocalDateTime(pro, in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Antecedência mínima (somente público)
	// --------------------------------------------------
	if in.Public {
		minAdvance := business.MinAdvanceMinutes
		if minAdvance <= 0 {
			minAdvance = defaultMinAdvanceMinutes
		}
		if start.Before(uc.now().Add(time.Duration(minAdvance) * time.Minute)) {
			return nil, httperr.ErrBusiness("too_soon")
		}
	}

	// --------------------------------------------------
	// 4️⃣ Serviço
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, business.ID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	if service.DurationMin <= 0 {
		return nil, httperr.ErrBusiness("invalid_duration")
	}

	end := start.Add(time.Duration(service.DurationMin) * time.Minute)

	// --------------------------------------------------
	// 5️⃣ Validação + reserva atômica
	// O cliente só é gravado depois que o horário passou na validação.
	// --------------------------------------------------
	status := domain.StatusConfirmed
	if in.Public {
		status = domain.InitialStatus()
	}

	var client *models.Client
	ap := &models.Appointment{
		BusinessID:     business.ID,
		BranchID:       in.BranchID,
		ProfessionalID: pro.ID,
		ServiceID:      service.ID,
		StartTime:      start,
		EndTime:        end,
		Status:         string(status),
		Notes:          in.Notes,
		CreatedByID:    in.CreatedBy,
	}

	err = uc.reserve(ctx, availability.ValidationRequest{
		ProfessionalID: pro.ID,
		BranchID:       in.BranchID,
		StartTime:      start,
		EndTime:        end,
	}, func() error {
		if client == nil {
			c, err := uc.repo.GetOrCreateClient(
				ctx,
				business.ID,
				in.ClientName,
				in.ClientPhone,
				in.ClientEmail,
			)
			if err != nil {
				return err
			}
			client = c
			ap.ClientID = c.ID
		}
		ap.ID = 0
		return uc.repo.CreateAppointment(ctx, ap)
	})
	if err != nil {
		if httperr.IsBusiness(err, string(availability.ReasonSlotTaken)) ||
			httperr.IsBusiness(err, string(availability.ReasonConflictOnCommit)) {
			uc.audit.Dispatch(audit.Event{
				BusinessID: business.ID,
				UserID:     in.CreatedBy,
				Action:     "appointment_conflict",
				Entity:     "appointment",
				Metadata: map[string]any{
					"professional_id": pro.ID,
					"start_time":      start,
					"end_time":        end,
					"reason":          httperr.Code(err),
				},
			})
		}
		return nil, err
	}

	ap.Client = *client
	ap.Service = *service

	// --------------------------------------------------
	// 6️⃣ Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		BusinessID: business.ID,
		UserID:     in.CreatedBy,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &ap.ID,
		Metadata: map[string]any{
			"professional_id": pro.ID,
			"public":          in.Public,
		},
	})

	return ap, nil
}
