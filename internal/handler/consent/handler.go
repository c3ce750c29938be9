package consent

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
	Create(ctx context.Context, sess *session.Session, patientID uuid.UUID, req *model.CreateConsentRequest) (*model.OrthodonticConsent, error)
	Latest(ctx context.Context, patientID uuid.UUID) (*model.OrthodonticConsent, error)
	List(ctx context.Context, patientID uuid.UUID) ([]*model.OrthodonticConsent, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// UploadRoute carries signature images and has its own body limit.
const UploadRoute = "/patients/:id/consents"

// RegisterRoutes nests consents under the patient they belong to.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consents := r.Group(UploadRoute)
	{
		consents.POST("", middleware.BodyLimit(middleware.ConsentBodyLimit), h.CreateConsent)
		consents.GET("", h.ListConsents)
		consents.GET("/latest", h.LatestConsent)
	}
}

func (h *Handler) CreateConsent(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.CreateConsentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	consent, err := h.service.Create(c.Request.Context(), sess, patientID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, consent)
}

func (h *Handler) ListConsents(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	consents, err := h.service.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, consents)
}

func (h *Handler) LatestConsent(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	consent, err := h.service.Latest(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, consent)
}
