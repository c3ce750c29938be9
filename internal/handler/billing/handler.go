package billing

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	List(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	Create(ctx context.Context, sess *session.Session, req *model.CreatePaymentRequest) (*model.Payment, error)
	UpdateStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error)
	MonthlySummary(ctx context.Context, day time.Time) (*model.BillingSummary, error)
}

type Handler struct {
	service Service
	loc     *time.Location
}

func NewHandler(service Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, loc: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.CreatePayment)
		payments.GET("/summary", h.Summary)
		payments.GET("/:id", h.GetPayment)
		payments.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) ListPayments(c *gin.Context) {
	var filters model.PaymentFilters
	if !handler.BindQuery(c, &filters) || !handler.QueryID(c, "patient_id", &filters.PatientID) {
		return
	}
	payments, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, payments)
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	payment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, payment)
}

func (h *Handler) CreatePayment(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.CreatePaymentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	payment, err := h.service.Create(c.Request.Context(), sess, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, payment)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePaymentStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	payment, err := h.service.UpdateStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, payment)
}

// Summary takes ?month=YYYY-MM and defaults to the current month.
func (h *Handler) Summary(c *gin.Context) {
	var day time.Time
	if m := c.Query("month"); m != "" {
		parsed, err := time.ParseInLocation("2006-01", m, h.loc)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation(apperrors.FieldError{Field: "month", Message: "must be in YYYY-MM format"}))
			return
		}
		day = parsed
	}
	summary, err := h.service.MonthlySummary(c.Request.Context(), day)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}
