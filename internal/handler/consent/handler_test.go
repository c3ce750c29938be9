package consent

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/internal/handler/handlertest"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type stubService struct {
	patientID uuid.UUID
	createErr error
}

func (s *stubService) Create(_ context.Context, _ *session.Session, patientID uuid.UUID, req *model.CreateConsentRequest) (*model.OrthodonticConsent, error) {
	s.patientID = patientID
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.OrthodonticConsent{PatientID: patientID, Status: model.ConsentStatusPendingSignature}, nil
}

func (s *stubService) Latest(context.Context, uuid.UUID) (*model.OrthodonticConsent, error) {
	return nil, apperrors.NotFound("consent", nil)
}

func (s *stubService) List(context.Context, uuid.UUID) ([]*model.OrthodonticConsent, error) {
	return []*model.OrthodonticConsent{}, nil
}

func body() map[string]interface{} {
	return map[string]interface{}{
		"treatment": "Brackets", "duration": "18 meses", "total_cost": 30000, "monthly_payment": 1500,
		"accepts_terms": true, "patient_signature": "data:image/png;base64,AAAA", "doctor_signature": "data:image/png;base64,AAAA",
	}
}

func setup(t *testing.T, svc *stubService) http.Handler {
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New()})
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func TestCreateConsent(t *testing.T) {
	svc := &stubService{}
	r := setup(t, svc)
	patientID := uuid.New()

	w := handlertest.Do(r, http.MethodPost, "/api/v1/patients/"+patientID.String()+"/consents", body())
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, patientID, svc.patientID)

	b := body()
	b["doctor_signature"] = "data:image/jpeg;base64,AAAA"
	w = handlertest.Do(r, http.MethodPost, "/api/v1/patients/"+patientID.String()+"/consents", b)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateConsentUploadFailure(t *testing.T) {
	svc := &stubService{createErr: apperrors.Unavailable("the consent document could not be stored, please try again", nil)}
	r := setup(t, svc)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/patients/"+uuid.NewString()+"/consents", body())
	env := handlertest.Decode(t, w, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, strings.Contains(env.Message, "could not be stored"))
}

func TestLatestConsentNotFound(t *testing.T) {
	r := setup(t, &stubService{})
	w := handlertest.Do(r, http.MethodGet, "/api/v1/patients/"+uuid.NewString()+"/consents/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
