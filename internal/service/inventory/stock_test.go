package inventory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/mocks"
	"github.com/jwalitptl/dental-api/internal/service/audit"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, uuid.UUID, string, string, uuid.UUID, *audit.LogOptions) {}

func TestApplyStockDelta(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		delta     int
		minimum   int
		want      model.StockStatus
		restocked bool
		wantErr   bool
	}{
		{"below zero rejected", 3, -4, 10, "", false, true},
		{"exactly zero", 3, -3, 10, model.StockStatusOutOfStock, false, false},
		{"at minimum", 5, 5, 10, model.StockStatusLowStock, true, false},
		{"just above minimum", 10, 1, 10, model.StockStatusInStock, true, false},
		{"one unit left", 2, -1, 10, model.StockStatusLowStock, false, false},
		{"zero minimum", 0, 1, 0, model.StockStatusInStock, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := ApplyStockDelta(tt.quantity, tt.delta, tt.minimum)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInsufficientStock)
				assert.Equal(t, StockChange{}, change)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.quantity+tt.delta, change.Quantity)
			assert.Equal(t, tt.want, change.Status)
			assert.Equal(t, tt.restocked, change.Restocked)
		})
	}
}

func newService(repo *mocks.InventoryRepository, events *mocks.Emitter) *Service {
	return NewService(repo, events, nopRecorder{}, logger.Nop())
}

func TestAdjustStockRejectsNegativeWithoutWriting(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	svc := newService(repo, &mocks.Emitter{})
	ctx := context.Background()

	item := &model.InventoryItem{ID: uuid.New(), Quantity: 2, MinimumQuantity: 10, Status: model.StockStatusLowStock}
	repo.On("Get", ctx, item.ID).Return(item, nil)

	_, err := svc.AdjustStock(ctx, &session.Session{}, item.ID, -3)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.Equal(t, 2, item.Quantity)
	repo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjustStockRestock(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	svc := newService(repo, &mocks.Emitter{})
	ctx := context.Background()

	item := &model.InventoryItem{ID: uuid.New(), Quantity: 0, MinimumQuantity: 10, Status: model.StockStatusOutOfStock}
	repo.On("Get", ctx, item.ID).Return(item, nil)
	repo.On("UpdateStock", ctx, mock.MatchedBy(func(next *model.InventoryItem) bool {
		return next.Quantity == 25 && next.LastOrderedAt != nil
	}), 0).Return(nil)

	updated, err := svc.AdjustStock(ctx, &session.Session{}, item.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Quantity)
	assert.Equal(t, model.StockStatusInStock, updated.Status)
	assert.NotNil(t, updated.LastOrderedAt)
}

func TestAdjustStockEmitsLowStock(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	events := &mocks.Emitter{}
	svc := newService(repo, events)
	ctx := context.Background()

	item := &model.InventoryItem{ID: uuid.New(), Quantity: 12, MinimumQuantity: 10, Status: model.StockStatusInStock}
	repo.On("Get", ctx, item.ID).Return(item, nil)
	repo.On("UpdateStock", ctx, mock.AnythingOfType("*model.InventoryItem"), 12).Return(nil)
	events.On("Emit", ctx, model.EventInventoryLowStock, item).Return(nil).Once()

	updated, err := svc.AdjustStock(ctx, &session.Session{}, item.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, model.StockStatusLowStock, updated.Status)
	assert.Nil(t, updated.LastOrderedAt)
	events.AssertExpectations(t)
}

func TestAdjustStockRereadsStaleQuantity(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	svc := newService(repo, &mocks.Emitter{})
	ctx := context.Background()

	id := uuid.New()
	repo.On("Get", ctx, id).Return(&model.InventoryItem{ID: id, Quantity: 5, MinimumQuantity: 1, Status: model.StockStatusInStock}, nil).Once()
	repo.On("UpdateStock", ctx, mock.AnythingOfType("*model.InventoryItem"), 5).Return(fmt.Errorf("inventory item: %w", repository.ErrStale)).Once()
	repo.On("Get", ctx, id).Return(&model.InventoryItem{ID: id, Quantity: 2, MinimumQuantity: 1, Status: model.StockStatusInStock}, nil).Once()

	_, err := svc.AdjustStock(ctx, &session.Session{}, id, -3)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "UpdateStock", 1)
}

func TestAdjustStockGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	svc := newService(repo, &mocks.Emitter{})
	ctx := context.Background()

	id := uuid.New()
	repo.On("Get", ctx, id).Return(&model.InventoryItem{ID: id, Quantity: 50, MinimumQuantity: 1, Status: model.StockStatusInStock}, nil)
	repo.On("UpdateStock", ctx, mock.AnythingOfType("*model.InventoryItem"), 50).Return(repository.ErrStale)

	_, err := svc.AdjustStock(ctx, &session.Session{}, id, -1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	repo.AssertNumberOfCalls(t, "UpdateStock", stockAttempts)
}

// stockTable keeps one item and applies conditional writes the way the
// postgres repository does. The first two reads wait for each other so both
// callers start from the same quantity.
type stockTable struct {
	repository.InventoryRepository

	mu      sync.Mutex
	item    model.InventoryItem
	reads   atomic.Int32
	barrier sync.WaitGroup
}

func newStockTable(item model.InventoryItem) *stockTable {
	st := &stockTable{item: item}
	st.barrier.Add(2)
	return st
}

func (st *stockTable) Get(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	st.mu.Lock()
	item := st.item
	st.mu.Unlock()
	if st.reads.Add(1) <= 2 {
		st.barrier.Done()
		st.barrier.Wait()
	}
	return &item, nil
}

func (st *stockTable) UpdateStock(_ context.Context, item *model.InventoryItem, expected int) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.item.Quantity != expected {
		return repository.ErrStale
	}
	st.item = *item
	return nil
}

func TestAdjustStockConcurrentWithdrawals(t *testing.T) {
	id := uuid.New()
	table := newStockTable(model.InventoryItem{ID: id, Quantity: 5, MinimumQuantity: 2, Status: model.StockStatusInStock})
	events := &mocks.Emitter{}
	events.On("Emit", mock.Anything, model.EventInventoryLowStock, mock.Anything).Return(nil)
	svc := NewService(table, events, nopRecorder{}, logger.Nop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AdjustStock(context.Background(), &session.Session{}, id, -5)
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperrors.IsCode(err, apperrors.ErrValidation):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, table.item.Quantity)
	assert.Equal(t, model.StockStatusOutOfStock, table.item.Status)
}

func TestCreateValidatesAndDefaultsMinimum(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	svc := newService(repo, &mocks.Emitter{})
	ctx := context.Background()

	_, err := svc.Create(ctx, &session.Session{}, &model.CreateInventoryItemRequest{Name: " ", Category: "Juguetes", UnitPrice: -1})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 3)

	repo.On("Create", ctx, mock.AnythingOfType("*model.InventoryItem")).Return(nil)
	item, err := svc.Create(ctx, &session.Session{}, &model.CreateInventoryItemRequest{Name: "Guantes", Category: "Desechables", Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMinimumQuantity, item.MinimumQuantity)
	assert.Equal(t, model.StockStatusLowStock, item.Status)
}

func TestUpdateRecomputesStatus(t *testing.T) {
	repo := &mocks.InventoryRepository{}
	svc := newService(repo, &mocks.Emitter{})
	ctx := context.Background()

	item := &model.InventoryItem{ID: uuid.New(), Name: "Anestesia", Category: "Anestésicos", Quantity: 8, MinimumQuantity: 10, Status: model.StockStatusLowStock}
	repo.On("Get", ctx, item.ID).Return(item, nil)
	repo.On("Update", ctx, item).Return(nil)

	minimum := 5
	updated, err := svc.Update(ctx, &session.Session{}, item.ID, &model.UpdateInventoryItemRequest{MinimumQuantity: &minimum})
	require.NoError(t, err)
	assert.Equal(t, model.StockStatusInStock, updated.Status)
}
