package models

import "time"

const (
	ExceptionBlocked    = "blocked"
	ExceptionExtraHours = "extra_hours"
)

// ScheduleException overrides the weekly rules for one calendar date.
// Date is "2006-01-02" in the professional's timezone. StartTime/EndTime are
// required for extra_hours and empty for a whole-day block.
type ScheduleException struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ProfessionalID uint   `gorm:"index:idx_schedule_exceptions_professional_date" json:"professional_id"`
	Date           string `gorm:"size:10;index:idx_schedule_exceptions_professional_date" json:"date"`

	Kind      string `gorm:"size:20;not null" json:"kind"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Reason    string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e ScheduleException) WholeDay() bool {
	return e.StartTime == "" && e.EndTime == ""
}
