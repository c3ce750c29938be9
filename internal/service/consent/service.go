package consent

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

// DocumentStore keeps generated documents. Upload returns where the document
// can be downloaded.
type DocumentStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo       repository.ConsentRepository
	patients   repository.PatientRepository
	storage    DocumentStore
	events     event.Emitter
	auditor    audit.Recorder
	log        *logger.Logger
	clinicName string
	loc        *time.Location
	now        func() time.Time
	suffix     func() string
}

func NewService(
	repo repository.ConsentRepository,
	patients repository.PatientRepository,
	storage DocumentStore,
	events event.Emitter,
	auditor audit.Recorder,
	log *logger.Logger,
	clinicName string,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		patients:   patients,
		storage:    storage,
		events:     events,
		auditor:    auditor,
		log:        log,
		clinicName: clinicName,
		loc:        loc,
		now:        time.Now,
		suffix:     func() string { return uuid.NewString()[:8] },
	}
}

// ObjectKey names the stored document after its creation instant. The suffix
// keeps documents created in the same millisecond apart.
func ObjectKey(at time.Time, suffix string) string {
	return fmt.Sprintf("consent_%d_%s.pdf", at.UnixMilli(), suffix)
}

// Create renders the consent document, uploads it and records it. Nothing is
// stored unless every step succeeds.
func (s *Service) Create(ctx context.Context, sess *session.Session, patientID uuid.UUID, req *model.CreateConsentRequest) (*model.OrthodonticConsent, error) {
	var fields []apperrors.FieldError
	if !req.AcceptsTerms {
		fields = append(fields, apperrors.FieldError{Field: "accepts_terms", Message: "terms must be accepted"})
	}
	if req.TotalCost <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "total_cost", Message: "must be greater than zero"})
	}
	if req.MonthlyPayment <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "monthly_payment", Message: "must be greater than zero"})
	}
	patientSig, err := DecodeSignature(req.PatientSignature)
	if err != nil {
		fields = append(fields, apperrors.FieldError{Field: "patient_signature", Message: err.Error()})
	}
	doctorSig, err := DecodeSignature(req.DoctorSignature)
	if err != nil {
		fields = append(fields, apperrors.FieldError{Field: "doctor_signature", Message: err.Error()})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	now := s.now()
	pdf, err := RenderPDF(Document{
		ClinicName:       s.clinicName,
		PatientName:      patient.FullName(),
		DoctorEmail:      sess.Email,
		Date:             now.In(s.loc),
		Treatment:        req.Treatment,
		Duration:         req.Duration,
		TotalCost:        req.TotalCost,
		MonthlyPayment:   req.MonthlyPayment,
		PatientSignature: patientSig,
		DoctorSignature:  doctorSig,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return nil, apperrors.BadRequest("signature image could not be read", err)
		}
		return nil, fmt.Errorf("failed to generate consent document: %w", err)
	}

	key := ObjectKey(now, s.suffix())
	url, err := s.storage.Upload(ctx, key, "application/pdf", pdf)
	if err != nil {
		return nil, apperrors.Unavailable("the consent document could not be stored, please try again", err)
	}

	consent := &model.OrthodonticConsent{
		PatientID:      patientID,
		PatientName:    patient.FullName(),
		Treatment:      req.Treatment,
		Duration:       req.Duration,
		TotalCost:      req.TotalCost,
		MonthlyPayment: req.MonthlyPayment,
		PDFURL:         url,
		AcceptedTerms:  req.AcceptsTerms,
		Status:         model.ConsentStatusPendingSignature,
		CreatedBy:      sess.UserID,
	}
	if err := s.repo.Create(ctx, consent); err != nil {
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.log.Error(derr, "failed to remove orphaned consent document", "key", key)
		}
		return nil, fmt.Errorf("failed to save consent: %w", err)
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionCreate, model.AuditEntityConsent, consent.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"patient_id": patientID, "pdf_url": url},
	})
	if err := s.events.Emit(ctx, model.EventConsentCreated, consent); err != nil {
		s.log.Error(err, "failed to record consent event", "consent_id", consent.ID.String())
	}
	return consent, nil
}

// Latest returns the newest consent of the patient.
func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*model.OrthodonticConsent, error) {
	consent, err := s.repo.Latest(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("consent", err)
		}
		return nil, fmt.Errorf("failed to load consent: %w", err)
	}
	return consent, nil
}

func (s *Service) List(ctx context.Context, patientID uuid.UUID) ([]*model.OrthodonticConsent, error) {
	consents, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}
	return consents, nil
}
