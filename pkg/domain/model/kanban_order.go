package model

import (
	"cmp"
	"time"

	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// KanbanOrder is the placement of one action on its team's board.
// Position is dense per column (0..N-1); SortOrder is sparse and only used to
// derive a stable order when inserting between neighbors.
type KanbanOrder struct {
	ActionID    ActionID
	TeamID      types.TeamID
	Column      types.ActionStatus
	Position    int
	SortOrder   int64
	LastMovedAt time.Time
}

// Copy returns a copy of the order
func (o *KanbanOrder) Copy() *KanbanOrder {
	copied := *o
	return &copied
}

// CompareKanbanOrder orders rows by SortOrder, then LastMovedAt, then ActionID.
// It is the display tie-break policy of the board.
func CompareKanbanOrder(a, b *KanbanOrder) int {
	if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
		return c
	}
	if c := a.LastMovedAt.Compare(b.LastMovedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ActionID, b.ActionID)
}

// CompareKanbanPosition orders rows by Position, falling back to CompareKanbanOrder
func CompareKanbanPosition(a, b *KanbanOrder) int {
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	return CompareKanbanOrder(a, b)
}
