package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// DefaultSortSpacing is the gap between neighboring sort orders after a reindex
const DefaultSortSpacing int64 = 1000

// ErrUnknownColumn is returned when a status is not declared by the board
var ErrUnknownColumn = goerr.New("unknown column")

// Column is one declared workflow state of the board
type Column struct {
	ID   types.ActionStatus
	Name string
	// Transitions lists the columns an action may move to from here.
	// Empty means every other declared column.
	Transitions []types.ActionStatus
}

// Board is the fixed set of columns shared by every team board of a deployment.
// It is built once from configuration and never changes at runtime.
type Board struct {
	columns     []Column
	initial     types.ActionStatus
	sortSpacing int64
}

// BoardOption configures NewBoard
type BoardOption func(*Board)

// WithInitialColumn sets the column new actions start in
func WithInitialColumn(status types.ActionStatus) BoardOption {
	return func(b *Board) {
		b.initial = status
	}
}

// WithSortSpacing sets the reindex spacing of sort orders
func WithSortSpacing(spacing int64) BoardOption {
	return func(b *Board) {
		b.sortSpacing = spacing
	}
}

// NewBoard validates and builds a board. The first column is the initial column
// unless WithInitialColumn says otherwise.
func NewBoard(columns []Column, opts ...BoardOption) (*Board, error) {
	if len(columns) == 0 {
		return nil, goerr.New("board requires at least one column")
	}

	b := &Board{
		columns:     make([]Column, len(columns)),
		initial:     columns[0].ID,
		sortSpacing: DefaultSortSpacing,
	}
	copy(b.columns, columns)
	for _, opt := range opts {
		opt(b)
	}

	seen := make(map[types.ActionStatus]bool)
	for _, col := range b.columns {
		if err := col.ID.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid column ID")
		}
		if seen[col.ID] {
			return nil, goerr.New("duplicate column ID", goerr.V("column", col.ID))
		}
		seen[col.ID] = true
	}
	for _, col := range b.columns {
		for _, to := range col.Transitions {
			if !seen[to] {
				return nil, goerr.Wrap(ErrUnknownColumn, "transition targets undeclared column",
					goerr.V("from", col.ID), goerr.V("to", to))
			}
		}
	}
	if !seen[b.initial] {
		return nil, goerr.Wrap(ErrUnknownColumn, "initial column is not declared", goerr.V("column", b.initial))
	}
	if b.sortSpacing < 2 {
		return nil, goerr.New("sort spacing must be at least 2", goerr.V("spacing", b.sortSpacing))
	}

	return b, nil
}

// DefaultBoard returns the TODO / IN_PROGRESS / DONE board with all transitions allowed
func DefaultBoard() *Board {
	statuses := types.DefaultActionStatuses()
	columns := make([]Column, len(statuses))
	names := map[types.ActionStatus]string{
		types.ActionStatusTodo:       "To Do",
		types.ActionStatusInProgress: "In Progress",
		types.ActionStatusDone:       "Done",
	}
	for i, s := range statuses {
		columns[i] = Column{ID: s, Name: names[s]}
	}
	b, err := NewBoard(columns)
	if err != nil {
		panic(err)
	}
	return b
}

// Columns returns the declared columns in display order
func (b *Board) Columns() []Column {
	result := make([]Column, len(b.columns))
	copy(result, b.columns)
	return result
}

// InitialColumn returns the column new actions start in
func (b *Board) InitialColumn() types.ActionStatus {
	return b.initial
}

// SortSpacing returns the spacing used when sort orders are respaced
func (b *Board) SortSpacing() int64 {
	return b.sortSpacing
}

// HasColumn reports whether status is a declared column
func (b *Board) HasColumn(status types.ActionStatus) bool {
	_, ok := b.column(status)
	return ok
}

func (b *Board) column(status types.ActionStatus) (Column, bool) {
	for _, col := range b.columns {
		if col.ID == status {
			return col, true
		}
	}
	return Column{}, false
}

// CanTransition reports whether an action may move from one column to another.
// Staying in the same declared column (a reorder) is always allowed.
func (b *Board) CanTransition(from, to types.ActionStatus) bool {
	src, ok := b.column(from)
	if !ok || !b.HasColumn(to) {
		return false
	}
	if from == to || len(src.Transitions) == 0 {
		return true
	}
	return slices.Contains(src.Transitions, to)
}
