package model

import (
	"time"

	"github.com/google/uuid"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

const DefaultMinimumQuantity = 10

var InventoryCategories = []string{
	"Material Restaurador",
	"Instrumental",
	"Anestésicos",
	"Higiene",
	"Ortodoncia",
	"Desechables",
	"Equipamiento",
	"Otros",
}

func ValidInventoryCategory(category string) bool {
	for _, c := range InventoryCategories {
		if c == category {
			return true
		}
	}
	return false
}

type InventoryItem struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Description     string      `db:"description" json:"description,omitempty"`
	Category        string      `db:"category" json:"category"`
	Quantity        int         `db:"quantity" json:"quantity"`
	MinimumQuantity int         `db:"minimum_quantity" json:"minimum_quantity"`
	UnitPrice       float64     `db:"unit_price" json:"unit_price"`
	Status          StockStatus `db:"status" json:"status"`
	Supplier        string      `db:"supplier" json:"supplier,omitempty"`
	LastOrderedAt   *time.Time  `db:"last_ordered_at" json:"last_ordered_at,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

type CreateInventoryItemRequest struct {
	Name            string  `json:"name" binding:"required,max=150"`
	Description     string  `json:"description" binding:"max=1000"`
	Category        string  `json:"category" binding:"required"`
	Quantity        int     `json:"quantity" binding:"min=0"`
	MinimumQuantity *int    `json:"minimum_quantity" binding:"omitempty,min=0"`
	UnitPrice       float64 `json:"unit_price" binding:"min=0"`
	Supplier        string  `json:"supplier" binding:"max=150"`
}

type UpdateInventoryItemRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=150"`
	Description     *string  `json:"description" binding:"omitempty,max=1000"`
	Category        *string  `json:"category"`
	MinimumQuantity *int     `json:"minimum_quantity" binding:"omitempty,min=0"`
	UnitPrice       *float64 `json:"unit_price" binding:"omitempty,min=0"`
	Supplier        *string  `json:"supplier" binding:"omitempty,max=150"`
}

type AdjustStockRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

type InventoryFilters struct {
	SearchTerm string      `form:"search"`
	Category   string      `form:"category"`
	Status     StockStatus `form:"status" binding:"omitempty,oneof=in_stock low_stock out_of_stock"`
	Limit      int         `form:"limit" binding:"omitempty,min=1,max=500"`
}
