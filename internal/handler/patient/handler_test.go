package patient

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/handler/handlertest"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/mocks"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	patientsvc "github.com/jwalitptl/dental-api/internal/service/patient"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, uuid.UUID, string, string, uuid.UUID, *audit.LogOptions) {}

type noAppointments struct{}

func (noAppointments) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func setup(t *testing.T, role string) (http.Handler, *mocks.PatientRepository) {
	repo := &mocks.PatientRepository{}
	svc := patientsvc.NewService(repo, noAppointments{}, &mocks.PaymentRepository{}, &mocks.Emitter{}, nopRecorder{}, logger.Nop())
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New(), Role: role})
	NewHandler(svc).RegisterRoutes(api)
	return r, repo
}

func TestDentalChartRoutes(t *testing.T) {
	r, repo := setup(t, model.UserRoleDoctor)
	patient := &model.Patient{ID: uuid.New(), Status: model.PatientStatusActive}
	repo.On("Get", mock.Anything, patient.ID).Return(patient, nil)
	repo.On("UpdateDentalChart", mock.Anything, patient.ID, mock.AnythingOfType("odontogram.Chart"), mock.Anything).Return(nil)
	base := "/api/v1/patients/" + patient.ID.String() + "/dental-chart"

	w := handlertest.Do(r, http.MethodPost, base+"/teeth/36/conditions", map[string]string{"condition": "cavity"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var panel odontogram.Panel
	handlertest.Decode(t, w, &panel)
	assert.Equal(t, 36, panel.Tooth)

	w = handlertest.Do(r, http.MethodPost, base+"/teeth/19/conditions", map[string]string{"condition": "cavity"})
	env := handlertest.Decode(t, w, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Errors[0]), `"field":"tooth"`)

	w = handlertest.Do(r, http.MethodPost, base+"/teeth/36/conditions", map[string]string{"condition": "gold-crown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodGet, base+"/svg?selected=11", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Body.String(), "<svg"))

	w = handlertest.Do(r, http.MethodGet, base, nil)
	var view model.DentalChartView
	handlertest.Decode(t, w, &view)
	assert.False(t, view.ReadOnly)
	assert.Len(t, view.Upper, 16)
}

func TestArchivedChartIsReadOnly(t *testing.T) {
	r, repo := setup(t, model.UserRoleDoctor)
	patient := &model.Patient{ID: uuid.New(), Status: model.PatientStatusArchived}
	repo.On("Get", mock.Anything, patient.ID).Return(patient, nil)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/patients/"+patient.ID.String()+"/dental-chart/teeth/11/conditions",
		map[string]string{"condition": "cavity"})
	assert.Equal(t, http.StatusConflict, w.Code)
	repo.AssertNotCalled(t, "UpdateDentalChart", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPatientNotFound(t *testing.T) {
	r, repo := setup(t, model.UserRoleStaff)
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(nil, repository.ErrNotFound)

	w := handlertest.Do(r, http.MethodGet, "/api/v1/patients/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRequiresRole(t *testing.T) {
	r, _ := setup(t, model.UserRoleStaff)
	w := handlertest.Do(r, http.MethodDelete, "/api/v1/patients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePatientValidation(t *testing.T) {
	r, _ := setup(t, model.UserRoleStaff)
	w := handlertest.Do(r, http.MethodPost, "/api/v1/patients", map[string]interface{}{
		"first_name": "Ana", "gender": "unknown",
	})
	env := handlertest.Decode(t, w, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.GreaterOrEqual(t, len(env.Errors), 3)
}
