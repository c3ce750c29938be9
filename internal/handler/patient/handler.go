package patient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/odontogram"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, sess *session.Session, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	UpdateStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.PatientStatus) (*model.Patient, error)
	Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) (*model.PatientHistory, error)

	DentalChart(ctx context.Context, id uuid.UUID) (*model.DentalChartView, error)
	RenderDentalChart(ctx context.Context, id uuid.UUID, selected int, w io.Writer) error
	ToothPanel(ctx context.Context, id uuid.UUID, tooth int) (*odontogram.Panel, error)
	ToggleCondition(ctx context.Context, sess *session.Session, id uuid.UUID, tooth int, conditionKey string) (*odontogram.Panel, error)
	AddTreatment(ctx context.Context, sess *session.Session, id uuid.UUID, tooth int, req *model.AddTreatmentRequest) (*odontogram.Treatment, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.PATCH("/:id/status", h.UpdateStatus)
		patients.DELETE("/:id", middleware.RequireRole(model.UserRoleAdmin, model.UserRoleDoctor), h.DeletePatient)
		patients.GET("/:id/history", h.History)

		chart := patients.Group("/:id/dental-chart")
		chart.GET("", h.DentalChart)
		chart.GET("/svg", h.DentalChartSVG)
		chart.GET("/teeth/:tooth", h.ToothPanel)
		chart.POST("/teeth/:tooth/conditions", h.ToggleCondition)
		chart.POST("/teeth/:tooth/treatments", h.AddTreatment)
	}
}

type toothURI struct {
	Tooth int `uri:"tooth" binding:"fdi_tooth"`
}

type toggleConditionRequest struct {
	Condition string `json:"condition" binding:"required"`
}

func (h *Handler) CreatePatient(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	patient, err := h.service.Create(c.Request.Context(), sess, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	patients, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	patient, err := h.service.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patient)
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
	var req model.UpdatePatientStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	patient, err := h.service.UpdateStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), sess, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	history, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, history)
}

func (h *Handler) DentalChart(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.DentalChart(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, view)
}

// DentalChartSVG renders the chart; ?selected=<tooth> highlights one tooth.
func (h *Handler) DentalChartSVG(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	selected := 0
	if s := c.Query("selected"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation(apperrors.FieldError{Field: "selected", Message: "must be a tooth number"}))
			return
		}
		selected = n
	}

	var buf bytes.Buffer
	if err := h.service.RenderDentalChart(c.Request.Context(), id, selected, &buf); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (h *Handler) ToothPanel(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var uri toothURI
	if !handler.BindURI(c, &uri) {
		return
	}
	panel, err := h.service.ToothPanel(c.Request.Context(), id, uri.Tooth)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, panel)
}

func (h *Handler) ToggleCondition(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var uri toothURI
	if !handler.BindURI(c, &uri) {
		return
	}
	var req toggleConditionRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	panel, err := h.service.ToggleCondition(c.Request.Context(), sess, id, uri.Tooth, req.Condition)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, panel)
}

func (h *Handler) AddTreatment(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var uri toothURI
	if !handler.BindURI(c, &uri) {
		return
	}
	var req model.AddTreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	treatment, err := h.service.AddTreatment(c.Request.Context(), sess, id, uri.Tooth, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, treatment)
}
