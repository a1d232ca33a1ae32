package timezone

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

const DefaultTimezone = "America/Sao_Paulo"

// fallback is used when neither the professional nor the business carries a
// valid zone. Set once at startup.
var fallback = DefaultTimezone

// SetFallback replaces the zone used when nothing else is configured.
func SetFallback(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil || tz == "" {
		return fmt.Errorf("invalid fallback timezone %q", tz)
	}
	fallback = tz
	return nil
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(fallback)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ForProfessional resolves the professional's own timezone, then the
// business one, then the default.
func ForProfessional(pro *models.User) *time.Location {
	if pro == nil {
		return Location("")
	}
	if IsValid(pro.Timezone) {
		return Location(pro.Timezone)
	}
	return Location(pro.Business.Timezone)
}

// StartOfDay returns local midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
