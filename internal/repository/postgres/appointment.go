package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

// date and time columns are read back as text in the layouts the model uses.
const appointmentColumns = `
	id, patient_id, doctor_id,
	to_char(date, 'YYYY-MM-DD') AS date,
	to_char(time, 'HH24:MI') AS time,
	duration, treatment_type, status, notes,
	created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, date, time, duration,
			treatment_type, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9, $10, $11)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Time,
		appointment.Duration,
		appointment.TreatmentType,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.get(ctx, &appointment, "appointment", query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var w where
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			w.add("patient_id = ?", filters.PatientID)
		}
		if filters.DoctorID != uuid.Nil {
			w.add("doctor_id = ?", filters.DoctorID)
		}
		if filters.Status != "" {
			w.add("status = ?", filters.Status)
		}
		if filters.Date != "" {
			w.add("date = ?::date", filters.Date)
		}
		if filters.From != "" {
			w.add("date >= ?::date", filters.From)
		}
		if filters.To != "" {
			w.add("date <= ?::date", filters.To)
		}
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments` + w.String() + ` ORDER BY date ASC, time ASC`
	if filters != nil && filters.Limit > 0 {
		query += " LIMIT " + w.next(filters.Limit)
	}

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, "update", "appointment", query, status, id)
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date, clock string) error {
	query := `
		UPDATE appointments
		SET date = $1::date, time = $2::time, status = $3, updated_at = NOW()
		WHERE id = $4
	`
	return r.exec(ctx, "reschedule", "appointment", query, date, clock, model.AppointmentStatusScheduled, id)
}
