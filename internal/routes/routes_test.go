package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/business-scheduler/internal/audit"
	"github.com/BruksfildServices01/business-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/business-scheduler/internal/db"
	"github.com/BruksfildServices01/business-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------- Helper ----------

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	audit   *audit.Dispatcher
	token   string
	service models.Service
	date    string
}

const password = "secret123"

// nextMonday is a Monday at least a week ahead in São Paulo, so nothing the
// tests book is in the past or inside the minimum advance.
func nextMonday() string {
	d := time.Now().In(timezone.Location("America/Sao_Paulo")).AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := dbpkg.Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dispatcher := audit.NewDispatcher(audit.New(db), zerolog.Nop())
	// Registered after the db cleanup so it runs first.
	t.Cleanup(dispatcher.Close)

	cfg := &config.Config{
		Env:               "test",
		JWTSecret:         "test-secret-123",
		MaxStatisticsDays: 93,
	}

	r := gin.New()
	if err := RegisterRoutes(r, Deps{
		DB:     db,
		Config: cfg,
		Logger: zerolog.Nop(),
		Locker: lock.Noop{},
		Audit:  dispatcher,
	}); err != nil {
		t.Fatalf("register routes: %v", err)
	}

	s := &testServer{t: t, db: db, router: r, audit: dispatcher, date: nextMonday()}
	s.seed()
	return s
}

func (s *testServer) seed() {
	s.t.Helper()

	business := models.Business{Name: "Studio", Slug: "studio", Timezone: "America/Sao_Paulo", MinAdvanceMinutes: 120}
	s.mustCreate(&business)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		s.t.Fatalf("hash: %v", err)
	}
	owner := models.User{
		BusinessID:   business.ID,
		Name:         "Ana",
		Email:        "ana@studio.com",
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
	}
	s.mustCreate(&owner)

	s.service = models.Service{
		BusinessID:  business.ID,
		Name:        "Cut",
		DurationMin: 30,
		Price:       decimal.RequireFromString("45.00"),
		Active:      true,
	}
	s.mustCreate(&s.service)

	w := s.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "ana@studio.com",
		"password": password,
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &out)
	s.token = out.Token
}

func (s *testServer) mustCreate(v any) {
	s.t.Helper()
	if err := s.db.Create(v).Error; err != nil {
		s.t.Fatalf("create %T: %v", v, err)
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) expect(w *httptest.ResponseRecorder, status int) {
	s.t.Helper()
	if w.Code != status {
		s.t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Code string `json:"error_code"`
	}
	decode(t, w, &out)
	return out.Code
}

// setWeekdayHours opens Monday to Friday 09:00-17:00 with lunch 12:00-13:00.
func (s *testServer) setWeekdayHours() {
	s.t.Helper()

	days := make([]map[string]any, 0, 5)
	for wd := 1; wd <= 5; wd++ {
		days = append(days, map[string]any{
			"weekday":     wd,
			"active":      true,
			"start_time":  "09:00",
			"end_time":    "17:00",
			"lunch_start": "12:00",
			"lunch_end":   "13:00",
		})
	}
	s.expect(s.do(http.MethodPut, "/api/me/working-hours", map[string]any{"days": days}), http.StatusOK)
}

// ---------- Tests ----------

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", nil)
	s.expect(w, http.StatusOK)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}

	s.token = ""
	w = s.do(http.MethodGet, "/api/me", nil)
	s.expect(w, http.StatusUnauthorized)

	w = s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "ana@studio.com", "password": "wrong-pass"})
	s.expect(w, http.StatusUnauthorized)
	if code := errorCode(t, w); code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %s", code)
	}
}

func TestWorkingHoursValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		day  map[string]any
	}{
		{"end before start", map[string]any{"weekday": 1, "active": true, "start_time": "17:00", "end_time": "09:00"}},
		{"bad clock", map[string]any{"weekday": 1, "active": true, "start_time": "9h", "end_time": "17:00"}},
		{"lunch outside", map[string]any{"weekday": 1, "active": true, "start_time": "09:00", "end_time": "12:00", "lunch_start": "12:00", "lunch_end": "13:00"}},
		{"weekday out of range", map[string]any{"weekday": 7, "active": true, "start_time": "09:00", "end_time": "17:00"}},
	}

	for _, tc := range cases {
		w := s.do(http.MethodPut, "/api/me/working-hours", map[string]any{"days": []any{tc.day}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}

	// Sunday is weekday 0 and must be accepted.
	w := s.do(http.MethodPut, "/api/me/working-hours", map[string]any{"days": []any{
		map[string]any{"weekday": 0, "active": true, "start_time": "10:00", "end_time": "14:00"},
	}})
	s.expect(w, http.StatusOK)

	// Replacing drops the previous rules of the same scope.
	s.setWeekdayHours()
	var hours []models.WorkingHours
	decode(t, s.do(http.MethodGet, "/api/me/working-hours", nil), &hours)
	if len(hours) != 5 {
		t.Fatalf("expected 5 rules after replace, got %d", len(hours))
	}
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	s.setWeekdayHours()

	// Staff booking at 10:00.
	w := s.do(http.MethodPost, "/api/me/appointments", map[string]any{
		"client_name":  "Bia",
		"client_phone": "11999990000",
		"service_id":   s.service.ID,
		"date":         s.date,
		"time":         "10:00",
	})
	s.expect(w, http.StatusCreated)
	var created models.Appointment
	decode(t, w, &created)
	if created.Status != "confirmed" {
		t.Fatalf("staff booking must start confirmed, got %s", created.Status)
	}

	// Overlapping public booking is refused with 409.
	w = s.do(http.MethodPost, "/api/public/studio/appointments", map[string]any{
		"client_name":  "Caio",
		"client_phone": "11988880000",
		"service_id":   s.service.ID,
		"date":         s.date,
		"time":         "10:15",
	})
	s.expect(w, http.StatusConflict)
	if code := errorCode(t, w); code != "slot_taken" {
		t.Fatalf("expected slot_taken, got %s", code)
	}

	// Inside lunch is outside working hours.
	w = s.do(http.MethodPost, "/api/public/studio/appointments", map[string]any{
		"client_name":  "Caio",
		"client_phone": "11988880000",
		"service_id":   s.service.ID,
		"date":         s.date,
		"time":         "12:15",
	})
	s.expect(w, http.StatusUnprocessableEntity)
	if code := errorCode(t, w); code != "outside_working_hours" {
		t.Fatalf("expected outside_working_hours, got %s", code)
	}

	// Touching the existing booking is fine; public bookings start pending.
	w = s.do(http.MethodPost, "/api/public/studio/appointments", map[string]any{
		"client_name":  "Caio",
		"client_phone": "11988880000",
		"service_id":   s.service.ID,
		"date":         s.date,
		"time":         "10:30",
	})
	s.expect(w, http.StatusCreated)
	var public models.Appointment
	decode(t, w, &public)
	if public.Status != "pending" {
		t.Fatalf("public booking must start pending, got %s", public.Status)
	}

	// Public slots: 09:00-12:00 and 13:00-17:00 in 30 min steps is 14,
	// minus the two booked.
	w = s.do(http.MethodGet, fmt.Sprintf("/api/public/studio/availability?date=%s&service_id=%d", s.date, s.service.ID), nil)
	s.expect(w, http.StatusOK)
	var avail struct {
		Slots []struct {
			Start string `json:"start"`
		} `json:"slots"`
	}
	decode(t, w, &avail)
	if len(avail.Slots) != 12 {
		t.Fatalf("expected 12 slots, got %d: %+v", len(avail.Slots), avail.Slots)
	}
	for _, sl := range avail.Slots {
		if sl.Start == "10:00" || sl.Start == "10:30" || sl.Start == "12:00" {
			t.Fatalf("slot %s must not be offered", sl.Start)
		}
	}

	// Cancelling frees the slot.
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/cancel", created.ID), nil)
	s.expect(w, http.StatusOK)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/complete", created.ID), nil)
	s.expect(w, http.StatusUnprocessableEntity)
	if code := errorCode(t, w); code != "invalid_state" {
		t.Fatalf("expected invalid_state, got %s", code)
	}

	w = s.do(http.MethodPost, "/api/me/appointments", map[string]any{
		"client_name":  "Duda",
		"client_phone": "11977770000",
		"service_id":   s.service.ID,
		"date":         s.date,
		"time":         "10:00",
	})
	s.expect(w, http.StatusCreated)

	// Listing by date shows the three rows, cancelled included.
	w = s.do(http.MethodGet, "/api/me/appointments?date="+s.date, nil)
	s.expect(w, http.StatusOK)
	var list []map[string]any
	decode(t, w, &list)
	if len(list) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(list))
	}
}

func TestRescheduleAndValidate(t *testing.T) {
	s := newTestServer(t)
	s.setWeekdayHours()

	book := func(clock, phone string) models.Appointment {
		w := s.do(http.MethodPost, "/api/me/appointments", map[string]any{
			"client_name":  "Client " + phone,
			"client_phone": phone,
			"service_id":   s.service.ID,
			"date":         s.date,
			"time":         clock,
		})
		s.expect(w, http.StatusCreated)
		var ap models.Appointment
		decode(t, w, &ap)
		return ap
	}

	first := book("10:00", "1")
	book("11:00", "2")

	// Moving onto its own slot shifted by 15 minutes is fine.
	w := s.do(http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/reschedule", first.ID), map[string]any{
		"date": s.date, "time": "10:15",
	})
	s.expect(w, http.StatusOK)

	// Onto the other booking is a conflict.
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/reschedule", first.ID), map[string]any{
		"date": s.date, "time": "10:45",
	})
	s.expect(w, http.StatusConflict)

	// Validate returns the verdict with 200.
	loc := timezone.Location("America/Sao_Paulo")
	day, _ := time.ParseInLocation("2006-01-02", s.date, loc)
	w = s.do(http.MethodPost, "/api/me/availability/validate", map[string]any{
		"start_time": day.Add(11*time.Hour + 15*time.Minute),
		"end_time":   day.Add(11*time.Hour + 45*time.Minute),
	})
	s.expect(w, http.StatusOK)
	var verdict struct {
		IsValid   bool   `json:"is_valid"`
		Reason    string `json:"reason"`
		Conflicts []any  `json:"conflicts"`
	}
	decode(t, w, &verdict)
	if verdict.IsValid || verdict.Reason != "slot_taken" || len(verdict.Conflicts) != 1 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}

	w = s.do(http.MethodPost, "/api/me/availability/validate", map[string]any{
		"start_time": day.Add(16 * time.Hour),
		"end_time":   day.Add(15 * time.Hour),
	})
	s.expect(w, http.StatusOK)
	decode(t, w, &verdict)
	if verdict.IsValid || verdict.Reason != "invalid_range" {
		t.Fatalf("expected invalid_range, got %+v", verdict)
	}
}

func TestScheduleExceptionsAndCalendar(t *testing.T) {
	s := newTestServer(t)
	s.setWeekdayHours()

	// Whole-day block closes the date.
	w := s.do(http.MethodPost, "/api/me/schedule-exceptions", map[string]any{
		"date": s.date, "kind": "blocked", "reason": "feriado",
	})
	s.expect(w, http.StatusCreated)
	var ex models.ScheduleException
	decode(t, w, &ex)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/me/availability/slots?date=%s&service_id=%d", s.date, s.service.ID), nil)
	s.expect(w, http.StatusOK)
	var slots struct {
		Slots []time.Time `json:"slots"`
	}
	decode(t, w, &slots)
	if len(slots.Slots) != 0 {
		t.Fatalf("blocked date must have no slots, got %d", len(slots.Slots))
	}

	// Extra hours need a window.
	w = s.do(http.MethodPost, "/api/me/schedule-exceptions", map[string]any{
		"date": s.date, "kind": "extra_hours",
	})
	s.expect(w, http.StatusBadRequest)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/me/schedule-exceptions/%d", ex.ID), nil)
	s.expect(w, http.StatusNoContent)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/me/schedule-exceptions/%d", ex.ID), nil)
	s.expect(w, http.StatusNotFound)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/me/availability/slots?date=%s&service_id=%d", s.date, s.service.ID), nil)
	s.expect(w, http.StatusOK)
	decode(t, w, &slots)
	if len(slots.Slots) != 14 {
		t.Fatalf("expected 14 slots once unblocked, got %d", len(slots.Slots))
	}

	// The grid needs an active service of this business.
	w = s.do(http.MethodGet, fmt.Sprintf("/api/me/availability/slots?date=%s", s.date), nil)
	s.expect(w, http.StatusBadRequest)

	retired := models.Service{BusinessID: s.service.BusinessID, Name: "Old", DurationMin: 60}
	s.mustCreate(&retired)
	s.db.Model(&retired).Update("active", false)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/me/availability/slots?date=%s&service_id=%d", s.date, retired.ID), nil)
	s.expect(w, http.StatusNotFound)
	if code := errorCode(t, w); code != "service_not_found" {
		t.Fatalf("expected service_not_found, got %s", code)
	}

	// Statistics over one day: 420 open minutes, nothing booked.
	w = s.do(http.MethodGet, fmt.Sprintf("/api/me/calendar/statistics?from=%s&to=%s", s.date, s.date), nil)
	s.expect(w, http.StatusOK)
	var stats struct {
		Statistics struct {
			OpenMinutes     int     `json:"open_minutes"`
			UtilizationRate float64 `json:"utilization_rate"`
		} `json:"statistics"`
	}
	decode(t, w, &stats)
	if stats.Statistics.OpenMinutes != 420 || stats.Statistics.UtilizationRate != 0 {
		t.Fatalf("unexpected statistics: %+v", stats.Statistics)
	}

	// Ranges beyond the cap are refused.
	day, _ := time.Parse("2006-01-02", s.date)
	far := day.AddDate(0, 0, 200).Format("2006-01-02")
	w = s.do(http.MethodGet, fmt.Sprintf("/api/me/calendar?from=%s&to=%s", s.date, far), nil)
	s.expect(w, http.StatusBadRequest)
	if code := errorCode(t, w); code != "range_too_large" {
		t.Fatalf("expected range_too_large, got %s", code)
	}
}

func TestAuditTrail(t *testing.T) {
	s := newTestServer(t)
	s.setWeekdayHours()

	w := s.do(http.MethodPost, "/api/me/appointments", map[string]any{
		"client_name":  "Bia",
		"client_phone": "1",
		"service_id":   s.service.ID,
		"date":         s.date,
		"time":         "09:00",
	})
	s.expect(w, http.StatusCreated)

	// Drain the queue before reading.
	s.audit.Close()

	w = s.do(http.MethodGet, "/api/me/audit-logs?action=appointment_created", nil)
	s.expect(w, http.StatusOK)
	var out struct {
		Total int64             `json:"total"`
		Logs  []models.AuditLog `json:"data"`
	}
	decode(t, w, &out)
	if out.Total != 1 || len(out.Logs) != 1 {
		t.Fatalf("expected one appointment_created log, got %+v", out)
	}

	for _, bad := range []string{"?limit=500", "?from=18-10-2026", "?entity_id=x"} {
		w = s.do(http.MethodGet, "/api/me/audit-logs"+bad, nil)
		s.expect(w, http.StatusBadRequest)
	}
}
