package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/service/event"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

type Service struct {
	repo     repository.PaymentRepository
	patients repository.PatientRepository
	events   event.Emitter
	auditor  audit.Recorder
	log      *logger.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewService(
	repo repository.PaymentRepository,
	patients repository.PatientRepository,
	events event.Emitter,
	auditor audit.Recorder,
	log *logger.Logger,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		auditor:  auditor,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// InvoiceNumber derives an invoice number from the creation instant.
func InvoiceNumber(at time.Time) string {
	return fmt.Sprintf("INV-%d", at.UnixMilli())
}

func (s *Service) List(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error) {
	payments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return payment, nil
}

func (s *Service) Create(ctx context.Context, sess *session.Session, req *model.CreatePaymentRequest) (*model.Payment, error) {
	if req.Amount <= 0 {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "amount", Message: "must be greater than zero"})
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	now := s.now()
	paidOn := now.In(s.loc)
	if req.PaymentDate != "" {
		if paidOn, err = time.ParseInLocation(model.DateLayout, req.PaymentDate, s.loc); err != nil {
			return nil, apperrors.Validation(apperrors.FieldError{Field: "payment_date", Message: "must be a YYYY-MM-DD date"})
		}
	}

	status := req.Status
	if status == "" {
		status = model.PaymentStatusPaid
	}

	payment := &model.Payment{
		PatientID:     req.PatientID,
		Amount:        req.Amount,
		PaymentDate:   paidOn,
		PaymentMethod: req.PaymentMethod,
		Concept:       req.Concept,
		InvoiceNumber: InvoiceNumber(now),
		Status:        status,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	payment.PatientName = patient.FullName()

	s.auditor.Record(ctx, sess.UserID, model.AuditActionCreate, model.AuditEntityPayment, payment.ID, &audit.LogOptions{Changes: payment})
	if err := s.events.Emit(ctx, model.EventPaymentCreated, payment); err != nil {
		s.log.Error(err, "failed to record payment event", "payment_id", payment.ID.String())
	}
	return payment, nil
}

func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	from := payment.Status
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", notFound(err))
	}
	payment.Status = status

	s.auditor.Record(ctx, sess.UserID, model.AuditActionStatusChange, model.AuditEntityPayment, id, &audit.LogOptions{
		Changes: map[string]interface{}{"from": from, "to": status},
	})
	return payment, nil
}

// MonthlySummary covers the calendar month containing day.
func (s *Service) MonthlySummary(ctx context.Context, day time.Time) (*model.BillingSummary, error) {
	if day.IsZero() {
		day = s.now()
	}
	day = day.In(s.loc)
	from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, 0)

	summary, err := s.repo.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize payments: %w", err)
	}
	summary.Month = from.Format("2006-01")
	return summary, nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("payment", err)
	}
	return err
}
