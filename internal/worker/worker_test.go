package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/email"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

type fakeLister struct {
	appts   []*model.Appointment
	filters *model.AppointmentFilters
	err     error
}

func (f *fakeLister) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	f.filters = filters
	return f.appts, f.err
}

type fakePatients map[uuid.UUID]*model.Patient

func (f fakePatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

type fakeMailer struct {
	sent []email.Reminder
	err  error
}

func (m *fakeMailer) SendReminder(_ context.Context, r email.Reminder) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, r)
	return nil
}

func TestReminderWorkerSendsOncePerAppointment(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	withEmail := &model.Patient{ID: uuid.New(), FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com"}
	withoutEmail := &model.Patient{ID: uuid.New(), FirstName: "Luis", LastName: "Perez"}

	lister := &fakeLister{appts: []*model.Appointment{
		{ID: uuid.New(), PatientID: withEmail.ID, Date: "2024-06-04", Time: "09:30", TreatmentType: "Limpieza", Status: model.AppointmentStatusScheduled},
		{ID: uuid.New(), PatientID: withoutEmail.ID, Date: "2024-06-04", Time: "11:00", TreatmentType: "Extraccion", Status: model.AppointmentStatusScheduled},
		{ID: uuid.New(), PatientID: uuid.New(), Date: "2024-06-04", Time: "12:00", Status: model.AppointmentStatusScheduled},
	}}
	mailer := &fakeMailer{}

	w := NewReminderWorker(lister, fakePatients{withEmail.ID: withEmail, withoutEmail.ID: withoutEmail}, mailer, time.Hour, loc, logger.Nop())
	w.now = func() time.Time { return time.Date(2024, 6, 3, 18, 0, 0, 0, loc) }

	sent, err := w.SendDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, "2024-06-04", lister.filters.Date)
	assert.Equal(t, model.AppointmentStatusScheduled, lister.filters.Status)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].PatientEmail)
	assert.Equal(t, "Ana Lopez", mailer.sent[0].PatientName)
	assert.True(t, mailer.sent[0].Start.Equal(time.Date(2024, 6, 4, 9, 30, 0, 0, loc)))

	sent, err = w.SendDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, mailer.sent, 1)
}

func TestReminderWorkerRetriesFailedSends(t *testing.T) {
	patient := &model.Patient{ID: uuid.New(), FirstName: "Ana", Email: "ana@example.com"}
	lister := &fakeLister{appts: []*model.Appointment{
		{ID: uuid.New(), PatientID: patient.ID, Date: "2024-06-04", Time: "09:30", Status: model.AppointmentStatusScheduled},
	}}
	mailer := &fakeMailer{err: errors.New("smtp unavailable")}

	w := NewReminderWorker(lister, fakePatients{patient.ID: patient}, mailer, time.Hour, time.UTC, logger.Nop())
	w.now = func() time.Time { return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC) }

	sent, err := w.SendDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	mailer.err = nil
	sent, err = w.SendDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderWorkerListFailure(t *testing.T) {
	w := NewReminderWorker(&fakeLister{err: errors.New("db down")}, fakePatients{}, &fakeMailer{}, time.Hour, time.UTC, logger.Nop())

	_, err := w.SendDue(context.Background())
	assert.Error(t, err)
}

type fakeSweeper struct {
	calls int
	err   error
}

func (s *fakeSweeper) Sweep(context.Context) (int, error) {
	s.calls++
	return 2, s.err
}

func TestStatusSweeperRun(t *testing.T) {
	sweeper := &fakeSweeper{}
	w := NewStatusSweeper(sweeper, time.Minute, logger.Nop())

	require.NoError(t, w.run(context.Background()))
	assert.Equal(t, 1, sweeper.calls)

	sweeper.err = errors.New("db down")
	assert.Error(t, w.run(context.Background()))
}

func TestRetentionWorkerRun(t *testing.T) {
	var got time.Duration
	cleaner := CleanerFunc(func(_ context.Context, retention time.Duration) (int64, error) {
		got = retention
		return 3, nil
	})

	w := NewRetentionWorker("audit_logs", cleaner, 30*24*time.Hour, time.Hour, logger.Nop())
	require.NoError(t, w.run(context.Background()))
	assert.Equal(t, 30*24*time.Hour, got)

	failing := NewRetentionWorker("outbox_events", CleanerFunc(func(context.Context, time.Duration) (int64, error) {
		return 0, errors.New("db down")
	}), time.Hour, time.Hour, logger.Nop())
	assert.ErrorContains(t, failing.run(context.Background()), "outbox_events")
}

func TestEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 10)

	done := make(chan struct{})
	go func() {
		every(ctx, time.Millisecond, "test", logger.Nop(), func(context.Context) error {
			select {
			case runs <- struct{}{}:
			default:
			}
			return errors.New("keeps going")
		})
		close(done)
	}()

	<-runs
	<-runs
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
