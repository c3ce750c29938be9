package inventory

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error)
	Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	LowStock(ctx context.Context) ([]*model.InventoryItem, error)
	Create(ctx context.Context, sess *session.Session, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error)
	Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.UpdateInventoryItemRequest) (*model.InventoryItem, error)
	AdjustStock(ctx context.Context, sess *session.Session, id uuid.UUID, delta int) (*model.InventoryItem, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/inventory")
	{
		items.GET("", h.ListItems)
		items.POST("", h.CreateItem)
		items.GET("/low-stock", h.LowStock)
		items.GET("/:id", h.GetItem)
		items.PUT("/:id", h.UpdateItem)
		items.POST("/:id/stock", h.AdjustStock)
	}
}

func (h *Handler) ListItems(c *gin.Context) {
	var filters model.InventoryFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	items, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, items)
}

func (h *Handler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, items)
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, item)
}

func (h *Handler) CreateItem(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	var req model.CreateInventoryItemRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), sess, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateInventoryItemRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, item)
}

// AdjustStock applies a signed quantity change, {"delta": -3} for usage.
func (h *Handler) AdjustStock(c *gin.Context) {
	sess, ok := handler.CurrentSession(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.AdjustStockRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	item, err := h.service.AdjustStock(c.Request.Context(), sess, id, *req.Delta)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, item)
}
