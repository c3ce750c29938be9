package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/internal/handler/handlertest"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
)

type stubService struct {
	syncEnabled *bool
	token       string
}

func (s *stubService) Profile(context.Context, *session.Session) (*model.Profile, error) {
	return &model.Profile{}, nil
}

func (s *stubService) ConnectCalendar(_ context.Context, _ *session.Session, req *model.ConnectCalendarRequest) (*model.Profile, error) {
	s.token = req.AccessToken
	return &model.Profile{GoogleCalendarConnected: true, GoogleCalendarEnabled: true}, nil
}

func (s *stubService) DisconnectCalendar(context.Context, *session.Session) (*model.Profile, error) {
	return &model.Profile{}, nil
}

func (s *stubService) SetCalendarSync(_ context.Context, _ *session.Session, enabled bool) (*model.Profile, error) {
	s.syncEnabled = &enabled
	return &model.Profile{GoogleCalendarEnabled: enabled}, nil
}

func (s *stubService) Create(context.Context, *session.Session, *model.CreateUserRequest) (*model.User, error) {
	return &model.User{}, nil
}

func (s *stubService) Get(context.Context, uuid.UUID) (*model.User, error) { return &model.User{}, nil }

func (s *stubService) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return []*model.User{}, nil
}

func (s *stubService) Update(context.Context, *session.Session, uuid.UUID, *model.UpdateUserRequest) (*model.User, error) {
	return &model.User{}, nil
}

func TestCalendarSettings(t *testing.T) {
	svc := &stubService{}
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New(), Role: model.UserRoleDoctor})
	NewHandler(svc).RegisterRoutes(api)

	w := handlertest.Do(r, http.MethodPut, "/api/v1/settings/calendar", map[string]string{"access_token": "ya29.x"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ya29.x", svc.token)

	w = handlertest.Do(r, http.MethodPatch, "/api/v1/settings/calendar/sync", map[string]bool{"enabled": false})
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, svc.syncEnabled) {
		assert.False(t, *svc.syncEnabled)
	}

	w = handlertest.Do(r, http.MethodPatch, "/api/v1/settings/calendar/sync", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersAdminOnly(t *testing.T) {
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New(), Role: model.UserRoleStaff})
	NewHandler(&stubService{}).RegisterRoutes(api)
	w := handlertest.Do(r, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r, api = handlertest.NewRouter(t, &session.Session{UserID: uuid.New(), Role: model.UserRoleAdmin})
	NewHandler(&stubService{}).RegisterRoutes(api)
	w = handlertest.Do(r, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
