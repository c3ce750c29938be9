package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/service/event"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

// AppointmentLister lists appointments with their lifecycle applied.
type AppointmentLister interface {
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type Service struct {
	repo         repository.PatientRepository
	appointments AppointmentLister
	payments     repository.PaymentRepository
	events       event.Emitter
	auditor      audit.Recorder
	log          *logger.Logger
}

func NewService(
	repo repository.PatientRepository,
	appointments AppointmentLister,
	payments repository.PaymentRepository,
	events event.Emitter,
	auditor audit.Recorder,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		payments:     payments,
		events:       events,
		auditor:      auditor,
		log:          log,
	}
}

func (s *Service) Create(ctx context.Context, sess *session.Session, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := validatePregnancy(req.Gender, req.PregnancyTrimester); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.PatientStatusActive
	}

	patient := &model.Patient{
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Age:                req.Age,
		Gender:             req.Gender,
		Occupation:         req.Occupation,
		Phone:              strings.TrimSpace(req.Phone),
		Address:            req.Address,
		Email:              strings.TrimSpace(req.Email),
		MedicalConditions:  req.MedicalConditions,
		PregnancyTrimester: req.PregnancyTrimester,
		CurrentMedications: req.CurrentMedications,
		VitalSigns:         req.VitalSigns,
		OralExamination:    req.OralExamination,
		TreatmentPlan:      req.TreatmentPlan,
		TotalCost:          req.TotalCost,
		Status:             status,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionCreate, model.AuditEntityPatient, patient.ID, nil)
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	if filters != nil && filters.MinAge != nil && filters.MaxAge != nil && *filters.MinAge > *filters.MaxAge {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "min_age", Message: "must not exceed max_age"})
	}

	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.FirstName != nil {
		patient.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		patient.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Age != nil {
		patient.Age = req.Age
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Occupation != nil {
		patient.Occupation = *req.Occupation
	}
	if req.Phone != nil {
		patient.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.Email != nil {
		patient.Email = strings.TrimSpace(*req.Email)
	}
	if req.MedicalConditions != nil {
		patient.MedicalConditions = *req.MedicalConditions
	}
	if req.PregnancyTrimester != nil {
		patient.PregnancyTrimester = req.PregnancyTrimester
	}
	if req.CurrentMedications != nil {
		patient.CurrentMedications = req.CurrentMedications
	}
	if req.VitalSigns != nil {
		patient.VitalSigns = *req.VitalSigns
	}
	if req.OralExamination != nil {
		patient.OralExamination = *req.OralExamination
	}
	if req.TreatmentPlan != nil {
		patient.TreatmentPlan = *req.TreatmentPlan
	}
	if req.TotalCost != nil {
		patient.TotalCost = *req.TotalCost
	}

	if patient.FirstName == "" || patient.LastName == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "first_name", Message: "first and last name are required"})
	}
	if err := validatePregnancy(patient.Gender, patient.PregnancyTrimester); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", notFound(err))
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityPatient, id, &audit.LogOptions{Changes: req})
	return patient, nil
}

// UpdateStatus changes the record status. Archiving closes the dental chart
// for edits.
func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.PatientStatus) (*model.Patient, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid patient status %q", status), nil)
	}

	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if patient.Status == status {
		return patient, nil
	}

	from := patient.Status
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update patient status: %w", notFound(err))
	}
	patient.Status = status

	changes := map[string]interface{}{"from": from, "to": status}
	s.auditor.Record(ctx, sess.UserID, model.AuditActionStatusChange, model.AuditEntityPatient, id, &audit.LogOptions{Changes: changes})
	if err := s.events.Emit(ctx, model.EventPatientStatusChanged, map[string]interface{}{
		"patient_id": id,
		"from":       from,
		"to":         status,
	}); err != nil {
		s.log.Error(err, "failed to record patient status event", "patient_id", id.String())
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", notFound(err))
	}
	s.auditor.Record(ctx, sess.UserID, model.AuditActionDelete, model.AuditEntityPatient, id, nil)
	return nil
}

// History returns the patient with their appointments and payments.
func (s *Service) History(ctx context.Context, id uuid.UUID) (*model.PatientHistory, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	appointments, err := s.appointments.List(ctx, &model.AppointmentFilters{PatientID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment history: %w", err)
	}
	payments, err := s.payments.List(ctx, &model.PaymentFilters{PatientID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to load payment history: %w", err)
	}

	return &model.PatientHistory{
		Patient:      patient,
		Appointments: appointments,
		Payments:     payments,
	}, nil
}

func validatePregnancy(gender model.Gender, trimester *int) error {
	if trimester != nil && gender != model.GenderFemale {
		return apperrors.Validation(apperrors.FieldError{
			Field:   "pregnancy_trimester",
			Message: "only applies to female patients",
		})
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("patient", err)
	}
	return err
}
