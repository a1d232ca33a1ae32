package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/BruksfildServices01/business-scheduler/internal/db"
	domain "github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

// ---------- Helper ----------

type fixture struct {
	db       *gorm.DB
	repo     *AppointmentGormRepository
	business models.Business
	pro      models.User
	service  models.Service
	client   models.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := dbpkg.Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{db: db, repo: NewAppointmentGormRepository(db)}

	f.business = models.Business{Name: "Studio", Slug: "studio", Timezone: "America/Sao_Paulo"}
	mustCreate(t, db, &f.business)

	f.pro = models.User{BusinessID: f.business.ID, Name: "Ana", Email: "ana@studio.com", PasswordHash: "x"}
	mustCreate(t, db, &f.pro)

	f.service = models.Service{BusinessID: f.business.ID, Name: "Cut", DurationMin: 30, Active: true}
	mustCreate(t, db, &f.service)

	f.client = models.Client{BusinessID: f.business.ID, Name: "Bia", Phone: "5511999990000"}
	mustCreate(t, db, &f.client)

	for wd := 1; wd <= 5; wd++ {
		mustCreate(t, db, &models.WorkingHours{
			ProfessionalID: f.pro.ID,
			Weekday:        wd,
			StartTime:      "09:00",
			EndTime:        "17:00",
			Active:         true,
		})
	}

	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

var saoPaulo = timezone.Location("America/Sao_Paulo")

func at(d, hh, mm int) time.Time {
	return time.Date(2024, time.June, d, hh, mm, 0, 0, saoPaulo)
}

func (f *fixture) appointment(status domain.Status, start, end time.Time) *models.Appointment {
	return &models.Appointment{
		BusinessID:     f.business.ID,
		ProfessionalID: f.pro.ID,
		ClientID:       f.client.ID,
		ServiceID:      f.service.ID,
		StartTime:      start,
		EndTime:        end,
		Status:         string(status),
	}
}

// ---------- Tests ----------

func TestCreateAppointment_RejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.appointment(domain.StatusConfirmed, at(10, 10, 0), at(10, 10, 30))
	if err := f.repo.CreateAppointment(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}

	clash := f.appointment(domain.StatusPending, at(10, 10, 15), at(10, 10, 45))
	err := f.repo.CreateAppointment(ctx, clash)
	if !httperr.IsBusiness(err, "conflict_on_commit") {
		t.Fatalf("expected conflict_on_commit, got %v", err)
	}

	touching := f.appointment(domain.StatusPending, at(10, 10, 30), at(10, 11, 0))
	if err := f.repo.CreateAppointment(ctx, touching); err != nil {
		t.Fatalf("touching appointment must be accepted: %v", err)
	}
}

func TestCreateAppointment_IgnoresNonOccupying(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range []domain.Status{domain.StatusCancelled, domain.StatusNoShow, domain.StatusCompleted} {
		if err := f.repo.CreateAppointment(ctx, f.appointment(s, at(10, 14, 0), at(10, 15, 0))); err != nil {
			t.Fatalf("create %s: %v", s, err)
		}
	}

	if err := f.repo.CreateAppointment(ctx, f.appointment(domain.StatusPending, at(10, 14, 0), at(10, 15, 0))); err != nil {
		t.Fatalf("released time must be bookable: %v", err)
	}
}

func TestUpdateAppointmentTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	moving := f.appointment(domain.StatusConfirmed, at(10, 10, 0), at(10, 11, 0))
	other := f.appointment(domain.StatusConfirmed, at(10, 13, 0), at(10, 14, 0))
	for _, ap := range []*models.Appointment{moving, other} {
		if err := f.repo.CreateAppointment(ctx, ap); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Overlapping its own old slot is fine.
	updated, err := f.repo.UpdateAppointmentTime(ctx, moving.ID, f.pro.ID, at(10, 10, 30), at(10, 11, 30), &f.pro.ID)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if !updated.StartTime.Equal(at(10, 10, 30)) || updated.Client.Name != "Bia" {
		t.Fatalf("unexpected appointment after reschedule: %+v", updated)
	}
	if updated.UpdatedByID == nil || *updated.UpdatedByID != f.pro.ID {
		t.Fatalf("expected updated_by to be stored")
	}

	_, err = f.repo.UpdateAppointmentTime(ctx, moving.ID, f.pro.ID, at(10, 12, 30), at(10, 13, 30), nil)
	if !httperr.IsBusiness(err, "conflict_on_commit") {
		t.Fatalf("expected conflict_on_commit, got %v", err)
	}

	other.Status = string(domain.StatusCancelled)
	if err := f.repo.UpdateAppointmentStatus(ctx, other, string(domain.StatusConfirmed)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = f.repo.UpdateAppointmentTime(ctx, other.ID, f.pro.ID, at(10, 15, 0), at(10, 16, 0), nil)
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state for cancelled appointment, got %v", err)
	}
}

func TestUpdateAppointmentStatus_KeepsConcurrentReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap := f.appointment(domain.StatusPending, at(10, 10, 0), at(10, 10, 30))
	if err := f.repo.CreateAppointment(ctx, ap); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Copy read before the reschedule commits.
	stale, err := f.repo.GetAppointmentForProfessional(ctx, ap.ID, f.pro.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := f.repo.UpdateAppointmentTime(ctx, ap.ID, f.pro.ID, at(10, 14, 0), at(10, 14, 30), nil); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	rebooked := f.appointment(domain.StatusConfirmed, at(10, 10, 0), at(10, 10, 30))
	if err := f.repo.CreateAppointment(ctx, rebooked); err != nil {
		t.Fatalf("rebook freed slot: %v", err)
	}

	if err := domain.Transition(stale, domain.ActionConfirm, time.Now()); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := f.repo.UpdateAppointmentStatus(ctx, stale, string(domain.StatusPending)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	stored, err := f.repo.GetAppointmentForProfessional(ctx, ap.ID, f.pro.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != string(domain.StatusConfirmed) {
		t.Fatalf("expected confirmed, got %s", stored.Status)
	}
	if !stored.StartTime.Equal(at(10, 14, 0)) || !stored.EndTime.Equal(at(10, 14, 30)) {
		t.Fatalf("reschedule was undone: %s-%s", stored.StartTime, stored.EndTime)
	}

	// A second writer with the same stale status loses.
	stale.Status = string(domain.StatusCancelled)
	err = f.repo.UpdateAppointmentStatus(ctx, stale, string(domain.StatusPending))
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestGetOccupyingAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mustCreate(t, f.db, f.appointment(domain.StatusConfirmed, at(10, 9, 0).UTC(), at(10, 9, 30).UTC()))
	mustCreate(t, f.db, f.appointment(domain.StatusCancelled, at(10, 10, 0).UTC(), at(10, 10, 30).UTC()))
	mustCreate(t, f.db, f.appointment(domain.StatusInProgress, at(10, 16, 30).UTC(), at(10, 17, 0).UTC()))
	mustCreate(t, f.db, f.appointment(domain.StatusPending, at(11, 9, 0).UTC(), at(11, 9, 30).UTC()))

	apps, err := f.repo.GetOccupyingAppointments(ctx, f.pro.ID, at(10, 0, 0), at(11, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 occupying appointments, got %d", len(apps))
	}
	if !apps[0].StartTime.Equal(at(10, 9, 0)) || !apps[1].StartTime.Equal(at(10, 16, 30)) {
		t.Fatalf("unexpected order: %v, %v", apps[0].StartTime, apps[1].StartTime)
	}

	all, err := f.repo.ListAppointmentsForPeriod(ctx, f.pro.ID, nil, at(10, 0, 0), at(11, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].Service.Name != "Cut" {
		t.Fatalf("expected 3 appointments with service loaded, got %d", len(all))
	}
}

func TestGetWorkingHoursRules_Branch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	branch := models.Branch{BusinessID: f.business.ID, Name: "Centro"}
	other := models.Branch{BusinessID: f.business.ID, Name: "Sul"}
	mustCreate(t, f.db, &branch)
	mustCreate(t, f.db, &other)

	mustCreate(t, f.db, &models.WorkingHours{ProfessionalID: f.pro.ID, BranchID: &branch.ID, Weekday: 6, StartTime: "09:00", EndTime: "12:00", Active: true})
	mustCreate(t, f.db, &models.WorkingHours{ProfessionalID: f.pro.ID, BranchID: &other.ID, Weekday: 6, StartTime: "13:00", EndTime: "16:00", Active: true})

	rules, err := f.repo.GetWorkingHoursRules(ctx, f.pro.ID, &branch.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Five weekday rules without a branch plus the Centro Saturday.
	if len(rules) != 6 {
		t.Fatalf("expected 6 rules, got %d", len(rules))
	}

	rules, err = f.repo.GetWorkingHoursRules(ctx, f.pro.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 7 {
		t.Fatalf("expected 7 rules, got %d", len(rules))
	}
}

func TestGetOrCreateClient_ReusesPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1, err := f.repo.GetOrCreateClient(ctx, f.business.ID, "Carla", "5511888880000", "")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	c2, err := f.repo.GetOrCreateClient(ctx, f.business.ID, "Carla S.", "5511888880000", "carla@mail.com")
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("expected the same client, got %d and %d", c1.ID, c2.ID)
	}
}

func TestEngineOverGorm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mustCreate(t, f.db, &models.ScheduleException{ProfessionalID: f.pro.ID, Date: "2024-06-11", Kind: models.ExceptionBlocked})
	if err := f.repo.CreateAppointment(ctx, f.appointment(domain.StatusConfirmed, at(10, 10, 0), at(10, 10, 30))); err != nil {
		t.Fatalf("create: %v", err)
	}

	engine := availability.NewEngine(f.repo, availability.Policy{
		Now: func() time.Time { return at(1, 8, 0) },
	}, zerolog.Nop())

	slots, err := engine.Slots.Enumerate(ctx, availability.SlotRequest{
		ProfessionalID:  f.pro.ID,
		Date:            at(10, 0, 0),
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots, got %d", len(slots))
	}

	blocked, err := engine.Slots.Enumerate(ctx, availability.SlotRequest{
		ProfessionalID:  f.pro.ID,
		Date:            at(11, 0, 0),
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(blocked) != 0 {
		t.Fatalf("expected blocked day, got %d slots", len(blocked))
	}

	res, err := engine.Validator.Validate(ctx, availability.ValidationRequest{
		ProfessionalID: f.pro.ID,
		StartTime:      at(10, 10, 15),
		EndTime:        at(10, 10, 45),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Reason != availability.ReasonSlotTaken {
		t.Fatalf("expected slot_taken, got %+v", res)
	}
}
