package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sourcegraph/conc/iter"

	"github.com/jwalitptl/dental-api/internal/calendar"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/service/event"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const (
	UpcomingDays = 7

	patientNameTTL = 5 * time.Minute

	reasonAutomatic = "automatic"
	reasonManual    = "manual"
)

// CalendarClient pushes a booking to a doctor's calendar.
type CalendarClient interface {
	CreateEvent(ctx context.Context, accessToken string, b calendar.Booking) (string, error)
}

type Config struct {
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	users    repository.UserRepository
	events   event.Emitter
	auditor  audit.Recorder
	log      *logger.Logger
	metrics  *metrics.Metrics

	calendar CalendarClient
	tokens   security.Encryptor

	names *cache.Cache
	loc   *time.Location
	now   func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	events event.Emitter,
	auditor audit.Recorder,
	log *logger.Logger,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:     repo,
		patients: patients,
		users:    users,
		events:   events,
		auditor:  auditor,
		log:      log,
		metrics:  m,
		names:    cache.New(patientNameTTL, 2*patientNameTTL),
		loc:      loc,
		now:      now,
	}
}

// WithCalendar enables pushing new bookings to doctors that turned calendar
// sync on. tokens decrypts the stored access tokens.
func (s *Service) WithCalendar(client CalendarClient, tokens security.Encryptor) *Service {
	s.calendar = client
	s.tokens = tokens
	return s
}

// List loads appointments, moves scheduled ones along the lifecycle and
// fills in patient names.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	s.applyTransitions(ctx, appts)
	s.attachPatientNames(ctx, appts)
	return appts, nil
}

// applyTransitions persists every pending transition concurrently and
// updates the in-memory status only for the writes that succeeded.
func (s *Service) applyTransitions(ctx context.Context, appts []*model.Appointment) {
	now := s.now().In(s.loc)

	var pending []transition
	for _, appt := range appts {
		start, err := appt.Start(s.loc)
		if err != nil {
			s.log.Warn("skipping appointment with unreadable start",
				"appointment_id", appt.ID.String(), "date", appt.Date, "time", appt.Time)
			continue
		}
		if next := NextStatus(appt.Status, start, now); next != appt.Status {
			pending = append(pending, transition{appt: appt, to: next})
		}
	}
	if len(pending) == 0 {
		return
	}

	results := iter.Map(pending, func(t *transition) error {
		return s.repo.UpdateStatus(ctx, t.appt.ID, t.to)
	})

	for i, err := range results {
		t := pending[i]
		from := t.appt.Status
		if err != nil {
			s.log.Error(err, "failed to persist automatic status transition",
				"appointment_id", t.appt.ID.String(), "from", string(from), "to", string(t.to))
			s.observeTransition(from, t.to, "failed")
			continue
		}

		t.appt.Status = t.to
		s.observeTransition(from, t.to, "applied")
		s.emit(ctx, model.EventAppointmentStatusChanged, model.StatusChange{
			AppointmentID: t.appt.ID,
			From:          from,
			To:            t.to,
			Reason:        reasonAutomatic,
			ChangedAt:     now,
		})
	}
}

func (s *Service) observeTransition(from, to model.AppointmentStatus, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.StatusTransitions.WithLabelValues(string(from), string(to), result).Inc()
}

// attachPatientNames resolves names through a short-lived cache. A failed
// lookup leaves the names empty.
func (s *Service) attachPatientNames(ctx context.Context, appts []*model.Appointment) {
	names := s.patientNames(ctx, appts)
	for _, appt := range appts {
		if name, ok := names[appt.PatientID]; ok {
			appt.PatientName = name.FullName()
		}
	}
}

func (s *Service) patientNames(ctx context.Context, appts []*model.Appointment) map[uuid.UUID]model.PatientName {
	names := make(map[uuid.UUID]model.PatientName, len(appts))
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(appts))

	for _, appt := range appts {
		if _, ok := seen[appt.PatientID]; ok {
			continue
		}
		seen[appt.PatientID] = struct{}{}

		if cached, ok := s.names.Get(appt.PatientID.String()); ok {
			names[appt.PatientID] = cached.(model.PatientName)
			continue
		}
		missing = append(missing, appt.PatientID)
	}
	if len(missing) == 0 {
		return names
	}

	fetched, err := s.patients.NamesByIDs(ctx, missing)
	if err != nil {
		s.log.Error(err, "failed to resolve patient names", "count", len(missing))
		return names
	}
	for id, name := range fetched {
		s.names.SetDefault(id.String(), name)
		names[id] = name
	}
	return names
}

// ForgetPatient drops a cached patient name after the patient changed.
func (s *Service) ForgetPatient(id uuid.UUID) {
	s.names.Delete(id.String())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	s.attachPatientNames(ctx, []*model.Appointment{appt})
	return appt, nil
}

// SetStatus is the manual override. Any of the four states may be chosen.
func (s *Service) SetStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid appointment status %q", status), nil)
	}

	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	from := appt.Status
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", notFound(err))
	}
	appt.Status = status

	s.auditor.Record(ctx, sess.UserID, model.AuditActionStatusChange, model.AuditEntityAppointment, id, &audit.LogOptions{
		Changes: map[string]interface{}{"from": from, "to": status},
	})
	s.emit(ctx, model.EventAppointmentStatusChanged, model.StatusChange{
		AppointmentID: id,
		From:          from,
		To:            status,
		Reason:        reasonManual,
		ChangedAt:     s.now(),
	})

	s.attachPatientNames(ctx, []*model.Appointment{appt})
	return appt, nil
}

// Reschedule moves the appointment and resets it to scheduled.
func (s *Service) Reschedule(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	if _, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, req.Date+" "+req.Time, s.loc); err != nil {
		return nil, apperrors.BadRequest("invalid date or time", err)
	}

	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if err := s.repo.Reschedule(ctx, id, req.Date, req.Time); err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", notFound(err))
	}

	previous := map[string]interface{}{"date": appt.Date, "time": appt.Time, "status": appt.Status}
	appt.Date = req.Date
	appt.Time = req.Time
	appt.Status = model.AppointmentStatusScheduled

	s.auditor.Record(ctx, sess.UserID, model.AuditActionReschedule, model.AuditEntityAppointment, id, &audit.LogOptions{
		Changes: map[string]interface{}{
			"from": previous,
			"to":   map[string]interface{}{"date": appt.Date, "time": appt.Time, "status": appt.Status},
		},
	})
	s.emit(ctx, model.EventAppointmentRescheduled, appt)

	s.attachPatientNames(ctx, []*model.Appointment{appt})
	return appt, nil
}

// Create books an appointment. The doctor defaults to the signed-in user.
func (s *Service) Create(ctx context.Context, sess *session.Session, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	appt := &model.Appointment{
		PatientID:     req.PatientID,
		DoctorID:      sess.UserID,
		Date:          req.Date,
		Time:          req.Time,
		Duration:      req.Duration,
		TreatmentType: req.TreatmentType,
		Status:        model.AppointmentStatusScheduled,
		Notes:         req.Notes,
	}
	if req.DoctorID != nil && *req.DoctorID != uuid.Nil {
		appt.DoctorID = *req.DoctorID
	}
	if appt.Duration <= 0 {
		appt.Duration = model.DefaultAppointmentDuration
	}

	start, err := appt.Start(s.loc)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date or time", err)
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	appt.PatientName = patient.FullName()

	s.auditor.Record(ctx, sess.UserID, model.AuditActionCreate, model.AuditEntityAppointment, appt.ID, &audit.LogOptions{
		Changes: appt,
	})
	s.emit(ctx, model.EventAppointmentCreated, appt)

	s.pushToCalendar(ctx, appt, patient, start)
	return appt, nil
}

// pushToCalendar never fails the booking; problems are only logged.
func (s *Service) pushToCalendar(ctx context.Context, appt *model.Appointment, patient *model.Patient, start time.Time) {
	if s.calendar == nil {
		return
	}

	doctor, err := s.users.Get(ctx, appt.DoctorID)
	if err != nil {
		s.log.Error(err, "failed to load doctor profile for calendar sync", "doctor_id", appt.DoctorID.String())
		return
	}
	if !doctor.CalendarSync() {
		return
	}

	token, err := security.DecryptString(s.tokens, doctor.ID.String(), doctor.GoogleCalendarToken)
	if err != nil {
		s.log.Error(err, "failed to decrypt calendar token", "doctor_id", doctor.ID.String())
		return
	}

	eventID, err := s.calendar.CreateEvent(ctx, token, calendar.Booking{
		TreatmentType: appt.TreatmentType,
		PatientName:   patient.FullName(),
		PatientEmail:  patient.Email,
		Notes:         appt.Notes,
		Start:         start,
		Duration:      time.Duration(appt.Duration) * time.Minute,
	})
	if err != nil {
		s.log.Error(err, "failed to create calendar event", "appointment_id", appt.ID.String())
		return
	}
	s.log.Debug("calendar event created", "appointment_id", appt.ID.String(), "event_id", eventID)
}

// ListRange returns the appointments between two dates, both inclusive.
func (s *Service) ListRange(ctx context.Context, from, to string) ([]*model.Appointment, error) {
	return s.List(ctx, &model.AppointmentFilters{From: from, To: to})
}

func (s *Service) Today(ctx context.Context) ([]*model.Appointment, error) {
	return s.List(ctx, &model.AppointmentFilters{Date: s.now().In(s.loc).Format(model.DateLayout)})
}

// Upcoming returns scheduled appointments starting within the next week.
func (s *Service) Upcoming(ctx context.Context) ([]*model.Appointment, error) {
	now := s.now().In(s.loc)
	appts, err := s.List(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusScheduled,
		From:   now.Format(model.DateLayout),
		To:     now.AddDate(0, 0, UpcomingDays).Format(model.DateLayout),
	})
	if err != nil {
		return nil, err
	}

	upcoming := make([]*model.Appointment, 0, len(appts))
	for _, appt := range appts {
		if appt.Status != model.AppointmentStatusScheduled {
			continue
		}
		if start, err := appt.Start(s.loc); err == nil && start.After(now) {
			upcoming = append(upcoming, appt)
		}
	}
	return upcoming, nil
}

// MonthStats summarizes the calendar month containing day, or the current
// month when day is zero. Progress is the
// share of non-cancelled appointments already completed.
func (s *Service) MonthStats(ctx context.Context, day time.Time) (*model.AppointmentStats, error) {
	if day.IsZero() {
		day = s.now()
	}
	day = day.In(s.loc)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, s.loc)
	last := first.AddDate(0, 1, -1)

	appts, err := s.ListRange(ctx, first.Format(model.DateLayout), last.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}

	stats := &model.AppointmentStats{Month: first.Format("2006-01"), Total: len(appts)}
	for _, appt := range appts {
		switch appt.Status {
		case model.AppointmentStatusCompleted:
			stats.Completed++
		case model.AppointmentStatusCancelled:
			stats.Cancelled++
		default:
			stats.Pending++
		}
	}
	if active := stats.Total - stats.Cancelled; active > 0 {
		stats.Progress = float64(stats.Completed) / float64(active)
	}
	return stats, nil
}

// Sweep applies the lifecycle rule to every open appointment up to today.
// It backs the worker's periodic sweep.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	today := s.now().In(s.loc).Format(model.DateLayout)

	var open []*model.Appointment
	for _, status := range []model.AppointmentStatus{model.AppointmentStatusScheduled, model.AppointmentStatusInProgress} {
		appts, err := s.repo.List(ctx, &model.AppointmentFilters{Status: status, To: today})
		if err != nil {
			return 0, fmt.Errorf("failed to list %s appointments: %w", status, err)
		}
		open = append(open, appts...)
	}

	before := make(map[uuid.UUID]model.AppointmentStatus, len(open))
	for _, appt := range open {
		before[appt.ID] = appt.Status
	}
	s.applyTransitions(ctx, open)

	moved := 0
	for _, appt := range open {
		if appt.Status != before[appt.ID] {
			moved++
		}
	}
	return moved, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.log.Error(err, "failed to record outbox event", "event_type", eventType)
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	return err
}
