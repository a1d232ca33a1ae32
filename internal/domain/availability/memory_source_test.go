package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

// ---------- Helper ----------

const testProID uint = 7

var errNoProfessional = errors.New("professional not found")

// memorySource is an in-memory Source. It deliberately returns appointments
// of every status from GetOccupyingAppointments so the index has to filter.
type memorySource struct {
	pro        models.User
	rules      []models.WorkingHours
	exceptions []models.ScheduleException
	apps       []models.Appointment
	calls      int
}

func newMemorySource() *memorySource {
	return &memorySource{
		pro: models.User{
			ID:       testProID,
			Name:     "Ana",
			Business: models.Business{Timezone: "America/Sao_Paulo"},
		},
	}
}

// weekdays opens Monday to Friday with the same window.
func (m *memorySource) weekdays(start, end string) *memorySource {
	for wd := 1; wd <= 5; wd++ {
		m.rules = append(m.rules, models.WorkingHours{
			ID:             uint(len(m.rules) + 1),
			ProfessionalID: testProID,
			Weekday:        wd,
			StartTime:      start,
			EndTime:        end,
			Active:         true,
		})
	}
	return m
}

func (m *memorySource) book(id uint, status string, start, end time.Time) *memorySource {
	m.apps = append(m.apps, models.Appointment{
		ID:             id,
		ProfessionalID: testProID,
		Status:         status,
		StartTime:      start,
		EndTime:        end,
	})
	return m
}

func (m *memorySource) GetProfessional(_ context.Context, id uint) (*models.User, error) {
	m.calls++
	if id != m.pro.ID {
		return nil, errNoProfessional
	}
	p := m.pro
	return &p, nil
}

func (m *memorySource) GetWorkingHoursRules(_ context.Context, id uint, _ *uint) ([]models.WorkingHours, error) {
	m.calls++
	var out []models.WorkingHours
	for _, r := range m.rules {
		if r.ProfessionalID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memorySource) GetScheduleExceptions(_ context.Context, id uint, date string) ([]models.ScheduleException, error) {
	m.calls++
	var out []models.ScheduleException
	for _, e := range m.exceptions {
		if e.ProfessionalID == id && e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memorySource) GetOccupyingAppointments(_ context.Context, id uint, start, end time.Time) ([]models.Appointment, error) {
	m.calls++
	var out []models.Appointment
	for _, ap := range m.apps {
		if ap.ProfessionalID == id && ap.StartTime.Before(end) && start.Before(ap.EndTime) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (m *memorySource) ListAppointmentsForPeriod(_ context.Context, id uint, _ *uint, start, end time.Time) ([]models.Appointment, error) {
	m.calls++
	var out []models.Appointment
	for _, ap := range m.apps {
		if ap.ProfessionalID == id && !ap.StartTime.Before(start) && ap.StartTime.Before(end) {
			out = append(out, ap)
		}
	}
	return out, nil
}

var saoPaulo = timezone.Location("America/Sao_Paulo")

// at builds a São Paulo wall-clock instant.
func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, saoPaulo)
}

func testPolicy() Policy {
	return Policy{
		Now: func() time.Time { return at(2024, 6, 1, 8, 0) },
	}
}

func newTestEngine(t *testing.T, src Source, policy Policy) *Engine {
	t.Helper()
	return NewEngine(src, policy, zerolog.Nop())
}

func uintPtr(v uint) *uint { return &v }
