package appointment

import "github.com/BruksfildServices01/business-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var occupying = []Status{StatusPending, StatusConfirmed, StatusInProgress}

// IsOccupying is the one place that decides whether an appointment reserves
// calendar time. Every query that looks for conflicts goes through it.
func IsOccupying(s Status) bool {
	for _, o := range occupying {
		if s == o {
			return true
		}
	}
	return false
}

// OccupyingStatuses returns the occupying statuses as strings, ready for a
// `status IN ?` clause.
func OccupyingStatuses() []string {
	out := make([]string, len(occupying))
	for i, s := range occupying {
		out[i] = string(s)
	}
	return out
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanStart(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanCancel define se um agendamento pode ser cancelado
func CanCancel(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete define se um agendamento pode ser concluído
func CanComplete(current Status) error {
	if !IsOccupying(current) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanReschedule only lets appointments that still hold time move.
func CanReschedule(current Status) error {
	if !IsOccupying(current) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}

var errInvalidState = httperr.ErrBusiness("invalid_state")
