package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/dental-api/internal/email"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

// sentTTL outlives the day the reminder is about.
const sentTTL = 48 * time.Hour

type AppointmentLister interface {
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type PatientGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

// ReminderWorker emails patients the day before a scheduled appointment.
// Each appointment is reminded at most once per process.
type ReminderWorker struct {
	appointments AppointmentLister
	patients     PatientGetter
	mailer       email.Service
	interval     time.Duration
	loc          *time.Location
	log          *logger.Logger

	sent *cache.Cache
	now  func() time.Time
}

func NewReminderWorker(
	appointments AppointmentLister,
	patients PatientGetter,
	mailer email.Service,
	interval time.Duration,
	loc *time.Location,
	log *logger.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		appointments: appointments,
		patients:     patients,
		mailer:       mailer,
		interval:     interval,
		loc:          loc,
		log:          log,
		sent:         cache.New(sentTTL, time.Hour),
		now:          time.Now,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	every(ctx, w.interval, "reminders", w.log, func(ctx context.Context) error {
		_, err := w.SendDue(ctx)
		return err
	})
}

// SendDue reminds every patient with an email address about tomorrow's
// scheduled appointments. It returns how many reminders went out.
func (w *ReminderWorker) SendDue(ctx context.Context) (int, error) {
	tomorrow := w.now().In(w.loc).AddDate(0, 0, 1).Format(model.DateLayout)
	appts, err := w.appointments.List(ctx, &model.AppointmentFilters{
		Date:   tomorrow,
		Status: model.AppointmentStatusScheduled,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list appointments for %s: %w", tomorrow, err)
	}

	sent := 0
	for _, appt := range appts {
		key := appt.ID.String()
		if _, done := w.sent.Get(key); done {
			continue
		}

		patient, err := w.patients.Get(ctx, appt.PatientID)
		if err != nil {
			w.log.Error(err, "failed to load patient for reminder", "appointment_id", key)
			continue
		}
		if strings.TrimSpace(patient.Email) == "" {
			continue
		}
		start, err := appt.Start(w.loc)
		if err != nil {
			w.log.Warn("skipping reminder with unparseable start", "appointment_id", key)
			continue
		}

		err = w.mailer.SendReminder(ctx, email.Reminder{
			PatientName:   patient.FullName(),
			PatientEmail:  patient.Email,
			TreatmentType: appt.TreatmentType,
			Start:         start,
		})
		if err != nil {
			w.log.Error(err, "failed to send reminder", "appointment_id", key)
			continue
		}
		w.sent.Set(key, struct{}{}, cache.DefaultExpiration)
		sent++
	}

	if sent > 0 {
		w.log.Info("appointment reminders sent", "count", sent, "date", tomorrow)
	}
	return sent, nil
}
