package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context, sess *session.Session)
	ChangePassword(ctx context.Context, sess *session.Session, req *model.ChangePasswordRequest) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the routes that work without a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.PUT("/password", h.ChangePassword)
		auth.GET("/session", h.Session)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	h.svc.Logout(c.Request.Context(), sess)
	c.Status(http.StatusNoContent)
}

// Session echoes the caller's session; clients use it to restore state.
func (h *Handler) Session(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, sess)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.ChangePasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), sess, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
