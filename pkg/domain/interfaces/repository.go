package interfaces

import (
	"context"
	"errors"
)

// Repository sentinel errors shared by every backend
var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the backend detects a concurrent mutation
	// (lock contention or an aborted optimistic transaction)
	ErrConflict = errors.New("concurrent modification")
)

// TxFunc is the body of a unit of work
type TxFunc func(ctx context.Context, tx Transaction) error

// Repository defines the interface for data persistence.
// All reads and writes happen inside RunTransaction so that each use case
// operation observes and produces a consistent state.
type Repository interface {
	// RunTransaction executes fn atomically. If fn returns an error, nothing
	// fn wrote is visible to any reader. Implementations never retry fn.
	RunTransaction(ctx context.Context, fn TxFunc) error

	// Close releases backend resources
	Close() error
}

// Transaction gives access to the stores participating in one unit of work
type Transaction interface {
	Action() ActionRepository
	Order() OrderRepository
	Checklist() ChecklistRepository
	Movement() MovementRepository
}
