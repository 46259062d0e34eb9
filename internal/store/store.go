// Package store provides the memory persistence interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/buddy/internal/model"
)

// ErrNotFound is returned when an id matches no stored memory.
var ErrNotFound = errors.New("memory not found")

// InsertParams holds the fields of a memory that does not exist yet.
// ID and timestamps are assigned by the store.
type InsertParams struct {
	UserID     string
	Type       model.Type
	Key        string
	Value      string
	Importance int // 0 means model.DefaultImportance
}

// UpdateFields is a partial update. Importance 0 leaves it unchanged;
// a zero UpdatedAt is replaced by the current time.
type UpdateFields struct {
	Value      string
	Importance int
	UpdatedAt  time.Time
}

// Store defines the memory persistence interface.
type Store interface {
	// SelectByUser returns every memory owned by userID, most important first.
	// Ties keep insertion order.
	SelectByUser(ctx context.Context, userID string) ([]model.Memory, error)

	// Insert creates a memory and returns it with id and timestamps filled in.
	Insert(ctx context.Context, p InsertParams) (*model.Memory, error)

	// UpdateByID applies a partial update. Returns ErrNotFound if no row matched.
	UpdateByID(ctx context.Context, id string, f UpdateFields) error

	// DeleteByID permanently removes a memory. Returns ErrNotFound if no row matched.
	DeleteByID(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
