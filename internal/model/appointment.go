package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in-progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusInProgress, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

const DefaultAppointmentDuration = 30

// TreatmentTypes are the appointment kinds offered at the front desk.
var TreatmentTypes = []string{
	"Limpieza Dental",
	"Extracción",
	"Empaste",
	"Revisión",
	"Ortodoncia",
	"Blanqueamiento",
	"Otro",
}

// Appointment holds a booking. Date and Time are wall-clock values in the
// clinic's time zone.
type Appointment struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	PatientID     uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date          string            `db:"date" json:"date"`
	Time          string            `db:"time" json:"time"`
	Duration      int               `db:"duration" json:"duration"`
	TreatmentType string            `db:"treatment_type" json:"treatment_type"`
	Status        AppointmentStatus `db:"status" json:"status"`
	Notes         string            `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`

	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// Start combines Date and Time in loc.
func (a *Appointment) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
}

type CreateAppointmentRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID      *uuid.UUID `json:"doctor_id"`
	Date          string     `json:"date" binding:"required,datetime=2006-01-02"`
	Time          string     `json:"time" binding:"required,hhmm"`
	Duration      int        `json:"duration" binding:"omitempty,min=5,max=480"`
	TreatmentType string     `json:"treatment_type" binding:"required,max=100"`
	Notes         string     `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=scheduled in-progress completed cancelled"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Time string `json:"time" binding:"required,hhmm"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID         `form:"-"`
	DoctorID  uuid.UUID         `form:"-"`
	Status    AppointmentStatus `form:"status" binding:"omitempty,oneof=scheduled in-progress completed cancelled"`
	Date      string            `form:"date" binding:"omitempty,datetime=2006-01-02"`
	From      string            `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string            `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit     int               `form:"limit" binding:"omitempty,min=1,max=500"`
}

// AppointmentStats summarizes a calendar month.
type AppointmentStats struct {
	Month     string  `json:"month"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Cancelled int     `json:"cancelled"`
	Pending   int     `json:"pending"`
	Progress  float64 `json:"progress"`
}

// StatusChange is the outbox payload for an appointment status change.
type StatusChange struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	From          AppointmentStatus `json:"from"`
	To            AppointmentStatus `json:"to"`
	Reason        string            `json:"reason"`
	ChangedAt     time.Time         `json:"changed_at"`
}
