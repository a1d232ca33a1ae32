package appointment

import (
	"time"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}
	ap.Status = string(StatusConfirmed)
	return nil
}

func Start(ap *models.Appointment) error {
	if err := CanStart(Status(ap.Status)); err != nil {
		return err
	}
	ap.Status = string(StatusInProgress)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}
	ap.Status = string(StatusNoShow)
	return nil
}

// Transition applies the named action. Unknown actions are invalid_state.
func Transition(ap *models.Appointment, action Action, now time.Time) error {
	switch action {
	case ActionConfirm:
		return Confirm(ap)
	case ActionStart:
		return Start(ap)
	case ActionComplete:
		return Complete(ap, now)
	case ActionCancel:
		return Cancel(ap, now)
	case ActionNoShow:
		return MarkNoShow(ap)
	}
	return errInvalidState
}

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionNoShow   Action = "no_show"
)

// AuditName is the audit_logs.action written after a successful transition.
func (a Action) AuditName() string {
	switch a {
	case ActionConfirm:
		return "appointment_confirmed"
	case ActionStart:
		return "appointment_started"
	case ActionComplete:
		return "appointment_completed"
	case ActionCancel:
		return "appointment_cancelled"
	case ActionNoShow:
		return "appointment_no_show"
	}
	return "appointment_" + string(a)
}
