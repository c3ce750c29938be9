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

const paymentSelect = `
	SELECT p.id, p.patient_id, p.amount, p.payment_date, p.payment_method,
		p.concept, p.invoice_number, p.status, p.notes, p.created_at,
		COALESCE(pt.first_name || ' ' || pt.last_name, '') AS patient_name
	FROM payments p
	LEFT JOIN patients pt ON pt.id = p.patient_id`

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(db)}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, patient_id, amount, payment_date, payment_method, concept,
			invoice_number, status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.PatientID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.Concept,
		payment.InvoiceNumber,
		payment.Status,
		payment.Notes,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.get(ctx, &payment, "payment", paymentSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return r.exec(ctx, "update", "payment", `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
}

func (r *paymentRepository) List(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error) {
	var w where
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			w.add("p.patient_id = ?", filters.PatientID)
		}
		if filters.Status != "" {
			w.add("p.status = ?", filters.Status)
		}
		if filters.Method != "" {
			w.add("p.payment_method = ?", filters.Method)
		}
		if filters.SearchTerm != "" {
			pattern := "%" + filters.SearchTerm + "%"
			w.add("(p.concept ILIKE ? OR p.invoice_number ILIKE ? OR pt.first_name || ' ' || pt.last_name ILIKE ?)", pattern, pattern, pattern)
		}
		if filters.From != "" {
			w.add("p.payment_date >= ?::date", filters.From)
		}
		if filters.To != "" {
			w.add("p.payment_date < ?::date + INTERVAL '1 day'", filters.To)
		}
	}

	query := paymentSelect + w.String() + ` ORDER BY p.payment_date DESC, p.created_at DESC`

	payments := []*model.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) Summary(ctx context.Context, from, to time.Time) (*model.BillingSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0) AS paid_total,
			COUNT(*) FILTER (WHERE status = 'paid') AS paid_count,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_count
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
	`
	var summary model.BillingSummary
	if err := r.db.GetContext(ctx, &summary, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to summarize payments: %w", err)
	}
	return &summary, nil
}
