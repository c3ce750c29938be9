package inventory

import (
	"errors"

	"github.com/jwalitptl/dental-api/internal/model"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// StockChange is the outcome of a stock adjustment.
type StockChange struct {
	Quantity  int
	Status    model.StockStatus
	Restocked bool
}

// StockStatusFor derives the stock status of a quantity.
func StockStatusFor(quantity, minimum int) model.StockStatus {
	switch {
	case quantity <= 0:
		return model.StockStatusOutOfStock
	case quantity <= minimum:
		return model.StockStatusLowStock
	default:
		return model.StockStatusInStock
	}
}

// ApplyStockDelta adds delta to quantity. It fails without a result when the
// stock would go negative. Restocked is set for positive deltas.
func ApplyStockDelta(quantity, delta, minimum int) (StockChange, error) {
	next := quantity + delta
	if next < 0 {
		return StockChange{}, ErrInsufficientStock
	}
	return StockChange{
		Quantity:  next,
		Status:    StockStatusFor(next, minimum),
		Restocked: delta > 0,
	}, nil
}
