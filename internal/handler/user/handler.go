package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	Profile(ctx context.Context, sess *session.Session) (*model.Profile, error)
	ConnectCalendar(ctx context.Context, sess *session.Session, req *model.ConnectCalendarRequest) (*model.Profile, error)
	DisconnectCalendar(ctx context.Context, sess *session.Session) (*model.Profile, error)
	SetCalendarSync(ctx context.Context, sess *session.Session, enabled bool) (*model.Profile, error)

	Create(ctx context.Context, sess *session.Session, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	settings := r.Group("/settings")
	{
		settings.GET("/profile", h.Profile)
		settings.PUT("/calendar", h.ConnectCalendar)
		settings.DELETE("/calendar", h.DisconnectCalendar)
		settings.PATCH("/calendar/sync", h.SetCalendarSync)
	}

	users := r.Group("/users", middleware.RequireRole(model.UserRoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
	}
}

func (h *Handler) Profile(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

func (h *Handler) ConnectCalendar(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.ConnectCalendarRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	profile, err := h.service.ConnectCalendar(c.Request.Context(), sess, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

func (h *Handler) DisconnectCalendar(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	profile, err := h.service.DisconnectCalendar(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

func (h *Handler) SetCalendarSync(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.CalendarSyncRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	profile, err := h.service.SetCalendarSync(c.Request.Context(), sess, *req.Enabled)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var filters model.UserFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	users, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, users)
}

func (h *Handler) CreateUser(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.CreateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	u, err := h.service.Create(c.Request.Context(), sess, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	u, err := h.service.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, u)
}
