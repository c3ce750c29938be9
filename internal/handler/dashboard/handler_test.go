package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/internal/handler/handlertest"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
)

type stubService struct{ err error }

func (s stubService) Stats(context.Context) (*model.DashboardStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.DashboardStats{TotalPatients: 7}, nil
}

func TestStats(t *testing.T) {
	r, api := handlertest.NewRouter(t, &session.Session{UserID: uuid.New()})
	NewHandler(stubService{}).RegisterRoutes(api)

	w := handlertest.Do(r, http.MethodGet, "/api/v1/dashboard", nil)
	var stats model.DashboardStats
	handlertest.Decode(t, w, &stats)
	assert.Equal(t, 7, stats.TotalPatients)

	r, api = handlertest.NewRouter(t, &session.Session{UserID: uuid.New()})
	NewHandler(stubService{err: errors.New("db down")}).RegisterRoutes(api)
	w = handlertest.Do(r, http.MethodGet, "/api/v1/dashboard", nil)
	env := handlertest.Decode(t, w, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
}
