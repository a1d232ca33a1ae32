package dto

import "time"

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	Occupying   bool      `json:"occupying"`
	BranchID    *uint     `json:"branch_id,omitempty"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	ServiceName string    `json:"service_name"`
	Notes       string    `json:"notes,omitempty"`
}

// TimeSlotDTO is a bookable slot. Start and End are wall-clock "15:04"
// labels in the professional's timezone; StartsAt carries the instant.
type TimeSlotDTO struct {
	Start    string    `json:"start"`
	End      string    `json:"end"`
	StartsAt time.Time `json:"starts_at"`
}
