package appointment

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
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Today(ctx context.Context) ([]*model.Appointment, error)
	Upcoming(ctx context.Context) ([]*model.Appointment, error)
	MonthStats(ctx context.Context, day time.Time) (*model.AppointmentStats, error)
	Create(ctx context.Context, sess *session.Session, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	SetStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	Reschedule(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error)
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
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/today", h.Today)
		appointments.GET("/upcoming", h.Upcoming)
		appointments.GET("/stats", h.MonthStats)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.PUT("/:id/reschedule", h.Reschedule)
	}
}

// ListAppointments loads appointments after applying the status rule, so the
// response always reflects the current time.
func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if !handler.BindQuery(c, &filters) ||
		!handler.QueryID(c, "patient_id", &filters.PatientID) ||
		!handler.QueryID(c, "doctor_id", &filters.DoctorID) {
		return
	}
	appts, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appts)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

func (h *Handler) Today(c *gin.Context) {
	appts, err := h.service.Today(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appts)
}

func (h *Handler) Upcoming(c *gin.Context) {
	appts, err := h.service.Upcoming(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appts)
}

// MonthStats takes ?month=YYYY-MM and defaults to the current month.
func (h *Handler) MonthStats(c *gin.Context) {
	var day time.Time
	if m := c.Query("month"); m != "" {
		parsed, err := time.ParseInLocation("2006-01", m, h.loc)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation(apperrors.FieldError{Field: "month", Message: "must be in YYYY-MM format"}))
			return
		}
		day = parsed
	}
	stats, err := h.service.MonthStats(c.Request.Context(), day)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	appt, err := h.service.Create(c.Request.Context(), sess, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, appt)
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
	var req model.UpdateAppointmentStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	appt, err := h.service.SetStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

func (h *Handler) Reschedule(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.RescheduleAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	appt, err := h.service.Reschedule(c.Request.Context(), sess, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}
