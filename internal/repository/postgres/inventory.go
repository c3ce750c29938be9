package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const inventoryColumns = `
	id, name, description, category, quantity, minimum_quantity, unit_price,
	status, supplier, last_ordered_at, created_at, updated_at`

type inventoryRepository struct {
	BaseRepository
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{NewBaseRepository(db)}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.Category,
		item.Quantity,
		item.MinimumQuantity,
		item.UnitPrice,
		item.Status,
		item.Supplier,
		item.LastOrderedAt,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1`

	var item model.InventoryItem
	if err := r.get(ctx, &item, "inventory item", query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			name = $1, description = $2, category = $3, minimum_quantity = $4,
			unit_price = $5, supplier = $6, status = $7, updated_at = $8
		WHERE id = $9
	`
	item.UpdatedAt = time.Now()

	return r.exec(ctx, "update", "inventory item", query,
		item.Name,
		item.Description,
		item.Category,
		item.MinimumQuantity,
		item.UnitPrice,
		item.Supplier,
		item.Status,
		item.UpdatedAt,
		item.ID,
	)
}

// UpdateStock writes the outcome of a stock adjustment, provided the stored
// quantity is still expected. Otherwise it returns repository.ErrStale and
// writes nothing.
func (r *inventoryRepository) UpdateStock(ctx context.Context, item *model.InventoryItem, expected int) error {
	query := `
		UPDATE inventory_items
		SET quantity = $1, status = $2, last_ordered_at = $3, updated_at = $4
		WHERE id = $5 AND quantity = $6
	`
	updatedAt := time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.Quantity,
		item.Status,
		item.LastOrderedAt,
		updatedAt,
		item.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock of inventory item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("inventory item: %w", repository.ErrStale)
	}
	item.UpdatedAt = updatedAt
	return nil
}

func (r *inventoryRepository) List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error) {
	var w where
	if filters != nil {
		if filters.SearchTerm != "" {
			pattern := "%" + filters.SearchTerm + "%"
			w.add("(name ILIKE ? OR description ILIKE ? OR supplier ILIKE ?)", pattern, pattern, pattern)
		}
		if filters.Category != "" {
			w.add("category = ?", filters.Category)
		}
		if filters.Status != "" {
			w.add("status = ?", filters.Status)
		}
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory_items` + w.String() + ` ORDER BY name ASC`
	if filters != nil && filters.Limit > 0 {
		query += " LIMIT " + w.next(filters.Limit)
	}

	items := []*model.InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	return items, nil
}
