package timezone

import (
	"testing"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

func TestLocation_FallsBackToDefault(t *testing.T) {
	if got := Location("Not/AZone").String(); got != DefaultTimezone {
		t.Fatalf("expected %s, got %s", DefaultTimezone, got)
	}
	if got := Location("").String(); got != DefaultTimezone {
		t.Fatalf("expected %s, got %s", DefaultTimezone, got)
	}
	if got := Location("Europe/Lisbon").String(); got != "Europe/Lisbon" {
		t.Fatalf("expected Europe/Lisbon, got %s", got)
	}
}

func TestForProfessional(t *testing.T) {
	pro := &models.User{
		Timezone: "",
		Business: models.Business{Timezone: "America/Manaus"},
	}
	if got := ForProfessional(pro).String(); got != "America/Manaus" {
		t.Fatalf("expected business timezone, got %s", got)
	}

	pro.Timezone = "Europe/Lisbon"
	if got := ForProfessional(pro).String(); got != "Europe/Lisbon" {
		t.Fatalf("expected professional timezone, got %s", got)
	}

	if got := ForProfessional(nil).String(); got != DefaultTimezone {
		t.Fatalf("expected default timezone, got %s", got)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := Location("America/Sao_Paulo")
	// 02:30 UTC on the 11th is still the 10th in São Paulo (UTC-3).
	ts := time.Date(2024, 6, 11, 2, 30, 0, 0, time.UTC)

	got := StartOfDay(ts, loc)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSetFallback(t *testing.T) {
	if err := SetFallback("Not/AZone"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
	if err := SetFallback("America/Manaus"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer SetFallback(DefaultTimezone)

	if got := Location("").String(); got != "America/Manaus" {
		t.Fatalf("expected fallback America/Manaus, got %s", got)
	}
}
