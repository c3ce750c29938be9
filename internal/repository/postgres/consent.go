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

const consentColumns = `
	id, patient_id, patient_name, treatment, duration, total_cost,
	monthly_payment, pdf_url, accepted_terms, status, created_by, created_at`

type consentRepository struct {
	BaseRepository
}

func NewConsentRepository(db *sqlx.DB) repository.ConsentRepository {
	return &consentRepository{NewBaseRepository(db)}
}

func (r *consentRepository) Create(ctx context.Context, consent *model.OrthodonticConsent) error {
	query := `
		INSERT INTO orthodontic_consents (` + consentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	consent.ID = uuid.New()
	consent.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		consent.ID,
		consent.PatientID,
		consent.PatientName,
		consent.Treatment,
		consent.Duration,
		consent.TotalCost,
		consent.MonthlyPayment,
		consent.PDFURL,
		consent.AcceptedTerms,
		consent.Status,
		consent.CreatedBy,
		consent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consent: %w", err)
	}
	return nil
}

func (r *consentRepository) Latest(ctx context.Context, patientID uuid.UUID) (*model.OrthodonticConsent, error) {
	query := `
		SELECT ` + consentColumns + ` FROM orthodontic_consents
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var consent model.OrthodonticConsent
	if err := r.get(ctx, &consent, "consent", query, patientID); err != nil {
		return nil, err
	}
	return &consent, nil
}

func (r *consentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.OrthodonticConsent, error) {
	query := `SELECT ` + consentColumns + ` FROM orthodontic_consents WHERE patient_id = $1 ORDER BY created_at DESC`

	consents := []*model.OrthodonticConsent{}
	if err := r.db.SelectContext(ctx, &consents, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}
	return consents, nil
}
