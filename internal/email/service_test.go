package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSendReminder(t *testing.T) {
	fs := &fakeSender{}
	svc := &smtpService{sender: fs, from: "citas@example.com", clinicName: "DentalCare"}

	start := time.Date(2024, 6, 4, 9, 30, 0, 0, time.UTC)
	err := svc.SendReminder(context.Background(), Reminder{
		PatientName: "Ana López", PatientEmail: "ana@example.com", TreatmentType: "Limpieza Dental", Start: start,
	})
	require.NoError(t, err)
	require.Len(t, fs.sent, 1)
	assert.Contains(t, fs.sent[0].GetHeader("To")[0], "ana@example.com")
	assert.Equal(t, []string{"Recordatorio de cita - DentalCare"}, fs.sent[0].GetHeader("Subject"))

	body := reminderBody("DentalCare", Reminder{PatientName: "Ana", TreatmentType: "Limpieza Dental", Start: start})
	assert.Contains(t, body, "04/06/2024")
	assert.Contains(t, body, "09:30")
}

func TestSendReminderErrors(t *testing.T) {
	fs := &fakeSender{err: errors.New("connection refused")}
	svc := &smtpService{sender: fs, from: "citas@example.com", clinicName: "DentalCare"}

	assert.Error(t, svc.SendReminder(context.Background(), Reminder{PatientName: "Sin correo"}))
	assert.Empty(t, fs.sent)

	err := svc.SendReminder(context.Background(), Reminder{PatientName: "Ana", PatientEmail: "ana@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}
