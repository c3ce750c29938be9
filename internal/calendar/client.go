// Package calendar pushes bookings to a doctor's Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/pkg/circuitbreaker"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

const (
	DefaultTimeZone = "America/Mexico_City"

	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 30
)

var ErrNoToken = errors.New("calendar access token is empty")

// Booking is the appointment data that ends up on the calendar.
type Booking struct {
	TreatmentType string
	PatientName   string
	PatientEmail  string
	Notes         string
	Start         time.Time
	Duration      time.Duration
}

type Client struct {
	endpoint   string
	timeZone   string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

func NewClient(cfg config.CalendarConfig, m *metrics.Metrics) *Client {
	tz := cfg.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		timeZone:   tz,
		httpClient: &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:     "google-calendar",
			Interval: time.Minute,
			Timeout:  30 * time.Second,
		}),
		metrics: m,
	}
}

// CreateEvent inserts the booking into the primary calendar of the token's
// owner and returns the event id. Attendees are notified by Google.
func (c *Client) CreateEvent(ctx context.Context, accessToken string, b Booking) (string, error) {
	if accessToken == "" {
		return "", ErrNoToken
	}

	var eventID string
	err := c.breaker.Execute(func() error {
		svc, err := c.service(ctx, accessToken)
		if err != nil {
			return err
		}
		created, err := svc.Events.Insert("primary", c.event(b)).
			SendUpdates("all").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		eventID = created.Id
		return nil
	})
	if c.metrics != nil {
		metrics.Observe(c.metrics.CollaboratorCalls, "calendar", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return eventID, nil
}

func (c *Client) service(ctx context.Context, accessToken string) (*gcal.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return gcal.NewService(ctx, opts...)
}

func (c *Client) event(b Booking) *gcal.Event {
	end := b.Start.Add(b.Duration)

	ev := &gcal.Event{
		Summary:     "Cita: " + b.TreatmentType,
		Description: "Paciente: " + b.PatientName + "\n" + b.Notes,
		Start: &gcal.EventDateTime{
			DateTime: b.Start.Format(time.RFC3339),
			TimeZone: c.timeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: c.timeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if b.PatientEmail != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: b.PatientEmail}}
	}
	return ev
}
