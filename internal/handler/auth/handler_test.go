package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/internal/handler/handlertest"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type stubService struct {
	loggedOut bool
}

func (s *stubService) Login(_ context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if req.Password != "correct-horse" {
		return nil, apperrors.Unauthorized(errors.New("invalid credentials"))
	}
	return &model.LoginResponse{AccessToken: "token", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubService) Logout(context.Context, *session.Session) { s.loggedOut = true }

func (s *stubService) ChangePassword(context.Context, *session.Session, *model.ChangePasswordRequest) error {
	return nil
}

func TestLogin(t *testing.T) {
	svc := &stubService{}
	r, api := handlertest.NewRouter(t, nil)
	NewHandler(svc).RegisterPublicRoutes(api)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "dr@example.com", "password": "correct-horse"})
	var resp model.LoginResponse
	handlertest.Decode(t, w, &resp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token", resp.AccessToken)

	w = handlertest.Do(r, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "dr@example.com", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = handlertest.Do(r, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "not-an-email", "password": "correct-horse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutAndPassword(t *testing.T) {
	svc := &stubService{}
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New()})
	NewHandler(svc).RegisterRoutes(api)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, svc.loggedOut)

	w = handlertest.Do(r, http.MethodPut, "/api/v1/auth/password", map[string]string{"current_password": "same-pass", "new_password": "same-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodPut, "/api/v1/auth/password", map[string]string{"current_password": "old-pass1", "new_password": "new-pass1"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoutesNeedSession(t *testing.T) {
	r, api := handlertest.NewRouter(t, nil)
	NewHandler(&stubService{}).RegisterRoutes(api)

	w := handlertest.Do(r, http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
