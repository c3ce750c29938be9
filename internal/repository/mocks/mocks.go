// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
)

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PatientStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *PatientRepository) UpdateDentalChart(ctx context.Context, id uuid.UUID, chart odontogram.Chart, loadedAt time.Time) error {
	return m.Called(ctx, id, chart, loadedAt).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	args := m.Called(ctx, filters)
	if p, ok := args.Get(0).([]*model.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *PatientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *PatientRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.PatientName, error) {
	args := m.Called(ctx, ids)
	if n, ok := args.Get(0).(map[uuid.UUID]model.PatientName); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*model.Appointment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	args := m.Called(ctx, filters)
	if a, ok := args.Get(0).([]*model.Appointment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *AppointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date, clock string) error {
	return m.Called(ctx, id, date, clock).Error(0)
}

type InventoryRepository struct {
	mock.Mock
}

func (m *InventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *InventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	args := m.Called(ctx, id)
	if i, ok := args.Get(0).(*model.InventoryItem); ok {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *InventoryRepository) UpdateStock(ctx context.Context, item *model.InventoryItem, expected int) error {
	return m.Called(ctx, item, expected).Error(0)
}

func (m *InventoryRepository) List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error) {
	args := m.Called(ctx, filters)
	if i, ok := args.Get(0).([]*model.InventoryItem); ok {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *PaymentRepository) List(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error) {
	args := m.Called(ctx, filters)
	if p, ok := args.Get(0).([]*model.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) Summary(ctx context.Context, from, to time.Time) (*model.BillingSummary, error) {
	args := m.Called(ctx, from, to)
	if s, ok := args.Get(0).(*model.BillingSummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type ConsentRepository struct {
	mock.Mock
}

func (m *ConsentRepository) Create(ctx context.Context, consent *model.OrthodonticConsent) error {
	return m.Called(ctx, consent).Error(0)
}

func (m *ConsentRepository) Latest(ctx context.Context, patientID uuid.UUID) (*model.OrthodonticConsent, error) {
	args := m.Called(ctx, patientID)
	if c, ok := args.Get(0).(*model.OrthodonticConsent); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConsentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.OrthodonticConsent, error) {
	args := m.Called(ctx, patientID)
	if c, ok := args.Get(0).([]*model.OrthodonticConsent); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	args := m.Called(ctx, filters)
	if u, ok := args.Get(0).([]*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *UserRepository) UpdateCalendar(ctx context.Context, id uuid.UUID, token string, enabled bool) error {
	return m.Called(ctx, id, token, enabled).Error(0)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filters *model.AuditLogFilters) ([]*model.AuditLog, int64, error) {
	args := m.Called(ctx, filters)
	logs, _ := args.Get(0).([]*model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

func (m *AuditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*model.OutboxEvent)
	return events, args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	return m.Called(ctx, id, errMsg, retryAt).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// Emitter records outbox events in memory.
type Emitter struct {
	mock.Mock
}

func (m *Emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}

