package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup or update matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned when a conditional update finds the row changed
	// since it was read.
	ErrStale = errors.New("record changed since it was read")
)
