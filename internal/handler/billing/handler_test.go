package billing

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/internal/handler/handlertest"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
)

type stubService struct {
	created *model.CreatePaymentRequest
	day     time.Time
	filters *model.PaymentFilters
}

func (s *stubService) List(_ context.Context, f *model.PaymentFilters) ([]*model.Payment, error) {
	s.filters = f
	return []*model.Payment{}, nil
}

func (s *stubService) Get(context.Context, uuid.UUID) (*model.Payment, error) {
	return &model.Payment{}, nil
}

func (s *stubService) Create(_ context.Context, _ *session.Session, req *model.CreatePaymentRequest) (*model.Payment, error) {
	s.created = req
	return &model.Payment{Amount: req.Amount, InvoiceNumber: "INV-1"}, nil
}

func (s *stubService) UpdateStatus(_ context.Context, _ *session.Session, _ uuid.UUID, st model.PaymentStatus) (*model.Payment, error) {
	return &model.Payment{Status: st}, nil
}

func (s *stubService) MonthlySummary(_ context.Context, day time.Time) (*model.BillingSummary, error) {
	s.day = day
	return &model.BillingSummary{}, nil
}

func setup(t *testing.T, svc *stubService) http.Handler {
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New()})
	NewHandler(svc, time.UTC).RegisterRoutes(api)
	return r
}

func TestCreatePayment(t *testing.T) {
	svc := &stubService{}
	r := setup(t, svc)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"patient_id": uuid.New(), "amount": 850.5, "payment_method": "card", "concept": "Limpieza",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 850.5, svc.created.Amount)

	w = handlertest.Do(r, http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"patient_id": uuid.New(), "amount": 0, "payment_method": "cheque", "concept": "Limpieza",
	})
	env := handlertest.Decode(t, w, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.Errors, 2)
}

func TestSummaryMonth(t *testing.T) {
	svc := &stubService{}
	r := setup(t, svc)

	w := handlertest.Do(r, http.MethodGet, "/api/v1/payments/summary?month=2024-03", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.March, svc.day.Month())

	w = handlertest.Do(r, http.MethodGet, "/api/v1/payments/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.day.IsZero())

	w = handlertest.Do(r, http.MethodGet, "/api/v1/payments?patient_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
