package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/service/event"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

const (
	// LowStockLimit caps the dashboard's low stock listing.
	LowStockLimit = 5

	stockAttempts = 3
)

type Service struct {
	repo    repository.InventoryRepository
	events  event.Emitter
	auditor audit.Recorder
	log     *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.InventoryRepository, events event.Emitter, auditor audit.Recorder, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		auditor: auditor,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// LowStock returns the items at or below their minimum, for alerts.
func (s *Service) LowStock(ctx context.Context) ([]*model.InventoryItem, error) {
	return s.List(ctx, &model.InventoryFilters{Status: model.StockStatusLowStock, Limit: LowStockLimit})
}

func (s *Service) Create(ctx context.Context, sess *session.Session, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	var fields []apperrors.FieldError
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "is required"})
	}
	if !model.ValidInventoryCategory(req.Category) {
		fields = append(fields, apperrors.FieldError{Field: "category", Message: "is not a known category"})
	}
	if req.Quantity < 0 {
		fields = append(fields, apperrors.FieldError{Field: "quantity", Message: "must be zero or more"})
	}
	if req.UnitPrice < 0 {
		fields = append(fields, apperrors.FieldError{Field: "unit_price", Message: "must be zero or more"})
	}
	minimum := model.DefaultMinimumQuantity
	if req.MinimumQuantity != nil {
		minimum = *req.MinimumQuantity
		if minimum < 0 {
			fields = append(fields, apperrors.FieldError{Field: "minimum_quantity", Message: "must be zero or more"})
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	item := &model.InventoryItem{
		Name:            name,
		Description:     req.Description,
		Category:        req.Category,
		Quantity:        req.Quantity,
		MinimumQuantity: minimum,
		UnitPrice:       req.UnitPrice,
		Status:          StockStatusFor(req.Quantity, minimum),
		Supplier:        req.Supplier,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionCreate, model.AuditEntityInventory, item.ID, &audit.LogOptions{Changes: item})
	return item, nil
}

// Update edits the descriptive fields. The status is recomputed since the
// minimum may have changed.
func (s *Service) Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *model.UpdateInventoryItemRequest) (*model.InventoryItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation(apperrors.FieldError{Field: "name", Message: "is required"})
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		if !model.ValidInventoryCategory(*req.Category) {
			return nil, apperrors.Validation(apperrors.FieldError{Field: "category", Message: "is not a known category"})
		}
		item.Category = *req.Category
	}
	if req.MinimumQuantity != nil {
		item.MinimumQuantity = *req.MinimumQuantity
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.Supplier != nil {
		item.Supplier = *req.Supplier
	}
	item.Status = StockStatusFor(item.Quantity, item.MinimumQuantity)

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", notFound(err))
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityInventory, item.ID, &audit.LogOptions{Changes: req})
	return item, nil
}

// AdjustStock applies a stock delta. A delta that would leave negative stock
// is rejected before anything is written. The write only lands if the
// quantity the rule was checked against is still current; concurrent
// adjustments are re-read and re-checked up to stockAttempts times.
func (s *Service) AdjustStock(ctx context.Context, sess *session.Session, id uuid.UUID, delta int) (*model.InventoryItem, error) {
	if delta == 0 {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "delta", Message: "must not be zero"})
	}

	var (
		item     *model.InventoryItem
		previous model.StockStatus
		err      error
	)
	for attempt := 1; ; attempt++ {
		item, err = s.repo.Get(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		previous = item.Status

		err = s.applyDelta(ctx, item, delta)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrStale) {
			return nil, err
		}
		if attempt == stockAttempts {
			return nil, apperrors.Conflict("stock changed while adjusting, try again", err)
		}
		s.log.Debug("stock changed concurrently, retrying", "item_id", id.String(), "attempt", attempt)
	}

	s.auditor.Record(ctx, sess.UserID, model.AuditActionUpdate, model.AuditEntityInventory, item.ID, &audit.LogOptions{
		Changes: map[string]interface{}{"delta": delta, "quantity": item.Quantity, "status": item.Status},
	})

	if item.Status != model.StockStatusInStock && item.Status != previous {
		if err := s.events.Emit(ctx, model.EventInventoryLowStock, item); err != nil {
			s.log.Error(err, "failed to record low stock event", "item_id", item.ID.String())
		}
	}
	return item, nil
}

// applyDelta checks the stock rule against item and writes the result
// conditioned on the quantity it was checked against.
func (s *Service) applyDelta(ctx context.Context, item *model.InventoryItem, delta int) error {
	read := item.Quantity
	change, err := ApplyStockDelta(read, delta, item.MinimumQuantity)
	if err != nil {
		return apperrors.Validation(apperrors.FieldError{
			Field:   "delta",
			Message: fmt.Sprintf("only %d units available", read),
		})
	}

	next := *item
	next.Quantity = change.Quantity
	next.Status = change.Status
	if change.Restocked {
		now := s.now()
		next.LastOrderedAt = &now
	}

	if err := s.repo.UpdateStock(ctx, &next, read); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return err
		}
		return fmt.Errorf("failed to update stock: %w", notFound(err))
	}
	*item = next
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("inventory item", err)
	}
	return err
}
