package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/dental-api/internal/config"
)

// Reminder is the data for one next-day appointment reminder.
type Reminder struct {
	PatientName   string
	PatientEmail  string
	TreatmentType string
	Start         time.Time
}

type Service interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// sender is the part of gomail.Dialer the mailer needs.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	sender     sender
	from       string
	clinicName string
}

func NewSMTPService(cfg config.SMTPConfig, clinicName string) Service {
	return &smtpService{
		sender:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		clinicName: clinicName,
	}
}

func (s *smtpService) SendReminder(ctx context.Context, r Reminder) error {
	if strings.TrimSpace(r.PatientEmail) == "" {
		return fmt.Errorf("patient %q has no email address", r.PatientName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.clinicName)
	m.SetAddressHeader("To", r.PatientEmail, r.PatientName)
	m.SetHeader("Subject", fmt.Sprintf("Recordatorio de cita - %s", s.clinicName))
	m.SetBody("text/plain", reminderBody(s.clinicName, r))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", r.PatientEmail, err)
	}
	return nil
}

func reminderBody(clinic string, r Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", r.PatientName)
	fmt.Fprintf(&b, "Le recordamos su cita de %s el %s a las %s.\n\n",
		r.TreatmentType, r.Start.Format("02/01/2006"), r.Start.Format("15:04"))
	b.WriteString("Si no puede asistir, por favor comuníquese con nosotros para reprogramarla.\n\n")
	fmt.Fprintf(&b, "%s\n", clinic)
	return b.String()
}
