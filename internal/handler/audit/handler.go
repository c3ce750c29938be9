package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	List(ctx context.Context, filters *model.AuditLogFilters) ([]*model.AuditLog, int64, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	audit := r.Group("/audit", middleware.RequireRole(model.UserRoleAdmin))
	{
		audit.GET("/logs", h.ListLogs)
		audit.GET("/export", h.ExportLogs)
	}
}

func (h *Handler) filters(c *gin.Context) (*model.AuditLogFilters, bool) {
	var filters model.AuditLogFilters
	if !handler.BindQuery(c, &filters) ||
		!handler.QueryID(c, "user_id", &filters.UserID) ||
		!handler.QueryID(c, "entity_id", &filters.EntityID) {
		return nil, false
	}
	return &filters, true
}

func (h *Handler) ListLogs(c *gin.Context) {
	filters, ok := h.filters(c)
	if !ok {
		return
	}
	logs, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	httputil.RespondWithPagination(c, logs, page, filters.Limit(), int(total))
}

// ExportLogs writes the matching page of logs as CSV.
func (h *Handler) ExportLogs(c *gin.Context) {
	if format := c.DefaultQuery("format", "csv"); format != "csv" {
		httputil.RespondWithError(c, apperrors.BadRequest("unsupported format", nil))
		return
	}
	filters, ok := h.filters(c)
	if !ok {
		return
	}
	logs, _, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("audit_logs_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"ID", "User ID", "Action", "Entity Type", "Entity ID", "IP Address", "Created At"})
	for _, l := range logs {
		_ = writer.Write([]string{
			l.ID.String(),
			l.UserID.String(),
			l.Action,
			l.EntityType,
			l.EntityID.String(),
			l.IPAddress,
			l.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}
