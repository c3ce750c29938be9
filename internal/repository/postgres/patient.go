package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const patientColumns = `
	id, first_name, last_name, age, gender, occupation, phone, address, email,
	medical_conditions, pregnancy_trimester, current_medications, vital_signs,
	oral_examination, dental_chart, treatment_plan, total_cost, status,
	created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	if patient.DentalChart == nil {
		patient.DentalChart = odontogram.Chart{}
	}
	if patient.CurrentMedications == nil {
		patient.CurrentMedications = pq.StringArray{}
	}

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.Age,
		patient.Gender,
		patient.Occupation,
		patient.Phone,
		patient.Address,
		patient.Email,
		patient.MedicalConditions,
		patient.PregnancyTrimester,
		patient.CurrentMedications,
		patient.VitalSigns,
		patient.OralExamination,
		patient.DentalChart,
		patient.TreatmentPlan,
		patient.TotalCost,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err := r.get(ctx, &patient, "patient", query, id); err != nil {
		return nil, err
	}
	return &patient, nil
}

// Update writes the demographic and clinical fields. Status and the dental
// chart have their own writers.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			first_name = $1, last_name = $2, age = $3, gender = $4, occupation = $5,
			phone = $6, address = $7, email = $8, medical_conditions = $9,
			pregnancy_trimester = $10, current_medications = $11, vital_signs = $12,
			oral_examination = $13, treatment_plan = $14, total_cost = $15, updated_at = $16
		WHERE id = $17
	`
	patient.UpdatedAt = time.Now()

	return r.exec(ctx, "update", "patient", query,
		patient.FirstName,
		patient.LastName,
		patient.Age,
		patient.Gender,
		patient.Occupation,
		patient.Phone,
		patient.Address,
		patient.Email,
		patient.MedicalConditions,
		patient.PregnancyTrimester,
		patient.CurrentMedications,
		patient.VitalSigns,
		patient.OralExamination,
		patient.TreatmentPlan,
		patient.TotalCost,
		patient.UpdatedAt,
		patient.ID,
	)
}

func (r *patientRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PatientStatus) error {
	query := `UPDATE patients SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, "update", "patient", query, status, id)
}

// UpdateDentalChart replaces the chart if the row still carries the
// updated_at it was loaded with, and returns repository.ErrStale otherwise.
func (r *patientRepository) UpdateDentalChart(ctx context.Context, id uuid.UUID, chart odontogram.Chart, loadedAt time.Time) error {
	query := `UPDATE patients SET dental_chart = $1, updated_at = NOW() WHERE id = $2 AND updated_at = $3`
	err := r.exec(ctx, "update", "patient", query, chart, id, loadedAt)
	if errors.Is(err, repository.ErrNotFound) {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("failed to check patient: %w", err)
		}
		if exists {
			return fmt.Errorf("patient: %w", repository.ErrStale)
		}
	}
	return err
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM patients WHERE id = $1`
	return r.exec(ctx, "delete", "patient", query, id)
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	var w where
	limit, offset := 50, 0
	if filters != nil {
		if filters.SearchTerm != "" {
			pattern := "%" + filters.SearchTerm + "%"
			w.add("(first_name || ' ' || last_name ILIKE ? OR phone ILIKE ? OR email ILIKE ?)", pattern, pattern, pattern)
		}
		if filters.Status != "" {
			w.add("status = ?", filters.Status)
		}
		if filters.Gender != "" {
			w.add("gender = ?", filters.Gender)
		}
		if filters.MinAge != nil {
			w.add("age >= ?", *filters.MinAge)
		}
		if filters.MaxAge != nil {
			w.add("age <= ?", *filters.MaxAge)
		}
		limit, offset = filters.Limit(), filters.Offset()
	}

	query := `SELECT ` + patientColumns + ` FROM patients` + w.String() + ` ORDER BY created_at DESC`
	query += " LIMIT " + w.next(limit) + " OFFSET " + w.next(offset)

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

func (r *patientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients WHERE created_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

func (r *patientRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.PatientName, error) {
	names := make(map[uuid.UUID]model.PatientName, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query, args, err := sqlx.In(`SELECT id, first_name, last_name, email FROM patients WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build patient name query: %w", err)
	}

	var rows []model.PatientName
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load patient names: %w", err)
	}
	for _, row := range rows {
		names[row.ID] = row
	}
	return names, nil
}
