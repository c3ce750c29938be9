package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.PatientStatus) error
		UpdateDentalChart(ctx context.Context, id uuid.UUID, chart odontogram.Chart, loadedAt time.Time) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		Count(ctx context.Context) (int, error)
		CountCreatedSince(ctx context.Context, since time.Time) (int, error)
		NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.PatientName, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		Reschedule(ctx context.Context, id uuid.UUID, date, clock string) error
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.InventoryItem) error
		Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
		Update(ctx context.Context, item *model.InventoryItem) error
		UpdateStock(ctx context.Context, item *model.InventoryItem, expected int) error
		List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Payment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
		List(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error)
		Summary(ctx context.Context, from, to time.Time) (*model.BillingSummary, error)
	}

	ConsentRepository interface {
		Create(ctx context.Context, consent *model.OrthodonticConsent) error
		Latest(ctx context.Context, patientID uuid.UUID) (*model.OrthodonticConsent, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.OrthodonticConsent, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
		UpdateCalendar(ctx context.Context, id uuid.UUID, token string, enabled bool) error
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditLogFilters) ([]*model.AuditLog, int64, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
