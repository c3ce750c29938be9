package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
	"github.com/jwalitptl/dental-api/internal/repository"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var appointmentRowColumns = []string{
	"id", "patient_id", "doctor_id", "date", "time", "duration",
	"treatment_type", "status", "notes", "created_at", "updated_at",
}

func TestAppointmentRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)
	ctx := context.Background()

	id, patientID, doctorID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
			AddRow(id.String(), patientID.String(), doctorID.String(), "2024-06-03", "09:30", 45,
				"Limpieza Dental", "scheduled", "", now, now))

	appt, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, appt.ID)
	assert.Equal(t, "2024-06-03", appt.Date)
	assert.Equal(t, "09:30", appt.Time)
	assert.Equal(t, 45, appt.Duration)
	assert.Equal(t, model.AppointmentStatusScheduled, appt.Status)
}

func TestAppointmentRepository_GetNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

	_, err := repo.Get(context.Background(), id)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestAppointmentRepository_ListFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)

	doctorID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE doctor_id = $1 AND status = $2 AND date >= $3::date AND date <= $4::date ORDER BY date ASC, time ASC LIMIT $5")).
		WithArgs(doctorID, "scheduled", "2024-06-01", "2024-06-30", 100).
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

	appts, err := repo.List(context.Background(), &model.AppointmentFilters{
		DoctorID: doctorID,
		Status:   model.AppointmentStatusScheduled,
		From:     "2024-06-01",
		To:       "2024-06-30",
		Limit:    100,
	})
	require.NoError(t, err)
	assert.NotNil(t, appts)
	assert.Empty(t, appts)
}

func TestAppointmentRepository_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)
	ctx := context.Background()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("completed", id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(ctx, id, model.AppointmentStatusCompleted))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1")).
		WithArgs("completed", id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(ctx, id, model.AppointmentStatusCompleted)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentRepository_RescheduleResetsStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("SET date = $1::date, time = $2::time, status = $3")).
		WithArgs("2024-07-01", "16:00", "scheduled", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reschedule(context.Background(), id, "2024-07-01", "16:00"))
}

func TestPatientRepository_NamesByIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepository(db)

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, email FROM patients WHERE id IN ($1, $2)")).
		WithArgs(a, b).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email"}).
			AddRow(a.String(), "Ana", "López", "ana@example.com"))

	names, err := repo.NamesByIDs(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "Ana López", names[a].FullName())

	empty, err := repo.NamesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPatientRepository_UpdateDentalChart(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepository(db)

	store := odontogram.NewStore(nil)
	_, err := store.ToggleCondition(16, odontogram.Cavity)
	require.NoError(t, err)

	id := uuid.New()
	loaded := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET dental_chart = $1, updated_at = NOW() WHERE id = $2 AND updated_at = $3")).
		WithArgs(`{"16":{"cavity":true}}`, id, loaded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateDentalChart(context.Background(), id, store.Chart(), loaded))
}

func TestPatientRepository_UpdateDentalChartStaleOrMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepository(db)
	ctx := context.Background()
	loaded := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	changed := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET dental_chart")).
		WithArgs("{}", changed, loaded).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)")).
		WithArgs(changed).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	assert.ErrorIs(t, repo.UpdateDentalChart(ctx, changed, odontogram.Chart{}, loaded), repository.ErrStale)

	gone := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET dental_chart")).
		WithArgs("{}", gone, loaded).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(gone).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	assert.ErrorIs(t, repo.UpdateDentalChart(ctx, gone, odontogram.Chart{}, loaded), repository.ErrNotFound)
}

func TestPatientRepository_ListSearch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepository(db)

	minAge := 18
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (first_name || ' ' || last_name ILIKE $1 OR phone ILIKE $2 OR email ILIKE $3) AND status = $4 AND age >= $5 ORDER BY created_at DESC LIMIT $6 OFFSET $7")).
		WithArgs("%ana%", "%ana%", "%ana%", "active", 18, 20, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(context.Background(), &model.PatientFilters{
		Pagination: model.Pagination{Page: 2, PageSize: 20},
		SearchTerm: "ana",
		Status:     "active",
		MinAge:     &minAge,
	})
	require.NoError(t, err)
}

func TestInventoryRepository_UpdateStock(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInventoryRepository(db)

	ordered := time.Now()
	item := &model.InventoryItem{ID: uuid.New(), Quantity: 4, Status: model.StockStatusLowStock, LastOrderedAt: &ordered}
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $5 AND quantity = $6")).
		WithArgs(4, "low_stock", ordered, sqlmock.AnyArg(), item.ID, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStock(context.Background(), item, 9))
	assert.False(t, item.UpdatedAt.IsZero())
}

func TestInventoryRepository_UpdateStockStale(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInventoryRepository(db)

	item := &model.InventoryItem{ID: uuid.New(), Quantity: 0, Status: model.StockStatusOutOfStock}
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $5 AND quantity = $6")).
		WithArgs(0, "out_of_stock", sqlmock.AnyArg(), sqlmock.AnyArg(), item.ID, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStock(context.Background(), item, 5)
	assert.ErrorIs(t, err, repository.ErrStale)
	assert.True(t, item.UpdatedAt.IsZero())
}

func TestPaymentRepository_Summary(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepository(db)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"paid_total", "paid_count", "pending_count"}).AddRow(1500.5, 3, 2))

	summary, err := repo.Summary(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 1500.5, summary.PaidTotal)
	assert.Equal(t, 3, summary.PaidCount)
	assert.Equal(t, 2, summary.PendingCount)
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOutboxRepository(db)

	id := uuid.New()
	retryAt := time.Now().Add(time.Minute)
	mock.ExpectExec(regexp.QuoteMeta("retry_count = retry_count + 1")).
		WithArgs("failed", "broker down", &retryAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), id, "broker down", &retryAt))
}

func TestOutboxRepository_CreateSendsPayloadAsText(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(sqlmock.AnyArg(), model.EventAppointmentStatusChanged, `{"to":"completed"}`, "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &model.OutboxEvent{EventType: model.EventAppointmentStatusChanged, Payload: []byte(`{"to":"completed"}`)}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, model.OutboxStatusPending, event.Status)
}

func TestAuditRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAuditRepository(db)

	entityID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE entity_id = $1")).
		WithArgs(entityID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs(entityID, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "entity_type", "entity_id", "changes", "metadata", "ip_address", "user_agent", "created_at"}).
			AddRow(uuid.NewString(), uuid.NewString(), "status_change", "appointment", entityID.String(), []byte(`{}`), []byte(`{}`), "127.0.0.1", "test", time.Now()))

	logs, total, err := repo.List(context.Background(), &model.AuditLogFilters{EntityID: entityID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "status_change", logs[0].Action)
}
