package models

import "time"

// WorkingHours is one recurring weekly rule. Times are "15:04" wall clock
// in the professional's timezone; EndTime may be "24:00".
type WorkingHours struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	ProfessionalID uint  `gorm:"index" json:"professional_id"`
	BranchID       *uint `gorm:"index" json:"branch_id"`

	Weekday int `json:"weekday"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
