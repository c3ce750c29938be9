package appointment

import (
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
)

// CompletionWindow is how long after its start an appointment is considered
// in progress before it is marked completed.
const CompletionWindow = time.Hour

// NextStatus applies the automatic lifecycle rule. Scheduled appointments
// move to in-progress once started and to completed one window after the
// start. An in-progress appointment only moves on to completed. Cancelled and
// completed appointments never change, and cancelled is never produced.
func NextStatus(status model.AppointmentStatus, start, now time.Time) model.AppointmentStatus {
	elapsed := now.Sub(start)

	switch status {
	case model.AppointmentStatusScheduled:
		switch {
		case elapsed >= CompletionWindow:
			return model.AppointmentStatusCompleted
		case elapsed >= 0:
			return model.AppointmentStatusInProgress
		}
	case model.AppointmentStatusInProgress:
		if elapsed >= CompletionWindow {
			return model.AppointmentStatusCompleted
		}
	}
	return status
}

// transition is a pending automatic status change.
type transition struct {
	appt *model.Appointment
	to   model.AppointmentStatus
}
