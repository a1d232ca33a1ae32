package validators

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// IsTimeOfDay accepts "HH:MM" on a 24h clock and the end-of-day "24:00".
func IsTimeOfDay(s string) bool {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func IsDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// RegisterBindings adds the "timeofday" and "date" tags to gin's validator.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		return IsTimeOfDay(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	})
}
