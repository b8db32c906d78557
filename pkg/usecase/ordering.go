package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// OrderingEngine owns Position and SortOrder of every KanbanOrder. No other
// component writes them. All methods run inside the caller's transaction.
//
// After every method returns, positions of each touched column are exactly
// 0..N-1 and sort orders increase strictly with position.
type OrderingEngine struct {
	registry *model.WorkspaceRegistry
	clock    func() time.Time
}

func NewOrderingEngine(registry *model.WorkspaceRegistry, clock func() time.Time) *OrderingEngine {
	return &OrderingEngine{registry: registry, clock: clock}
}

func (e *OrderingEngine) spacing(workspaceID string) int64 {
	board, err := e.registry.Board(workspaceID)
	if err != nil {
		return model.DefaultSortSpacing
	}
	return board.SortSpacing()
}

// NextSortOrder returns a value strictly between prev and next. A nil bound is
// open. ok is false when the bounds leave no room.
func NextSortOrder(prev, next *int64, spacing int64) (int64, bool) {
	switch {
	case prev == nil && next == nil:
		return spacing, true
	case next == nil:
		return *prev + spacing, true
	case prev == nil:
		return *next - spacing, true
	}

	if *next-*prev < 2 {
		return 0, false
	}
	return *prev + (*next-*prev)/2, true
}

// Append places a new order row into order.Column. A nil position appends at
// the end; otherwise the row is inserted at the clamped position.
func (e *OrderingEngine) Append(ctx context.Context, tx interfaces.Transaction, workspaceID string, order *model.KanbanOrder, position *int) (*model.KanbanOrder, error) {
	peers, err := e.peers(ctx, tx, workspaceID, order.TeamID, order.Column, order.ActionID)
	if err != nil {
		return nil, err
	}

	target := len(peers)
	if position != nil {
		target = *position
	}
	return e.insert(ctx, tx, workspaceID, order, peers, order.Column, target)
}

// Place moves order to targetPosition of targetColumn: the gap left in the
// source column is closed, a gap is opened in the target column, the row
// gets a sort order between its new neighbors and LastMovedAt is refreshed.
// targetPosition is clamped to [0, count of the other rows in the column].
func (e *OrderingEngine) Place(ctx context.Context, tx interfaces.Transaction, workspaceID string, order *model.KanbanOrder, targetColumn types.ActionStatus, targetPosition int) (*model.KanbanOrder, error) {
	if order.Column != targetColumn {
		if err := e.closeGap(ctx, tx, workspaceID, order); err != nil {
			return nil, err
		}
	}

	peers, err := e.peers(ctx, tx, workspaceID, order.TeamID, targetColumn, order.ActionID)
	if err != nil {
		return nil, err
	}
	return e.insert(ctx, tx, workspaceID, order, peers, targetColumn, targetPosition)
}

// Remove deletes the order row and closes the gap it leaves
func (e *OrderingEngine) Remove(ctx context.Context, tx interfaces.Transaction, workspaceID string, order *model.KanbanOrder) error {
	if err := tx.Order().Delete(ctx, workspaceID, order.ActionID); err != nil {
		return goerr.Wrap(err, "failed to delete kanban order", goerr.V(ActionIDKey, order.ActionID))
	}
	return e.closeGap(ctx, tx, workspaceID, order)
}

// Reindex rebuilds one column from scratch: rows are sorted by the display
// tie-break policy (SortOrder, LastMovedAt, ActionID) and get positions
// 0..N-1 and evenly spaced sort orders.
func (e *OrderingEngine) Reindex(ctx context.Context, tx interfaces.Transaction, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error) {
	rows, err := tx.Order().ListByColumn(ctx, workspaceID, teamID, column)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list column",
			goerr.V(TeamIDKey, teamID),
			goerr.V(ColumnKey, column))
	}

	slices.SortFunc(rows, model.CompareKanbanOrder)
	spacing := e.spacing(workspaceID)
	for i, row := range rows {
		if row.Position == i && row.SortOrder == int64(i+1)*spacing {
			continue
		}
		row.Position = i
		row.SortOrder = int64(i+1) * spacing
		if err := tx.Order().Put(ctx, workspaceID, row); err != nil {
			return nil, goerr.Wrap(err, "failed to reindex kanban order", goerr.V(ActionIDKey, row.ActionID))
		}
	}
	return rows, nil
}

// ColumnIssue is one violation of the ordering rules found by Inspect
type ColumnIssue struct {
	Column   types.ActionStatus
	ActionID model.ActionID
	Message  string
}

// Inspect reports rows of a column whose position or sort order is out of
// place. It never writes.
func (e *OrderingEngine) Inspect(ctx context.Context, tx interfaces.Transaction, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]ColumnIssue, error) {
	rows, err := tx.Order().ListByColumn(ctx, workspaceID, teamID, column)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list column",
			goerr.V(TeamIDKey, teamID),
			goerr.V(ColumnKey, column))
	}

	var issues []ColumnIssue
	for i, row := range rows {
		if row.Position != i {
			issues = append(issues, ColumnIssue{
				Column:   column,
				ActionID: row.ActionID,
				Message:  fmt.Sprintf("position %d, expected %d", row.Position, i),
			})
		}
		if i > 0 && rows[i-1].SortOrder >= row.SortOrder {
			issues = append(issues, ColumnIssue{
				Column:   column,
				ActionID: row.ActionID,
				Message:  fmt.Sprintf("sort order %d does not follow %d", row.SortOrder, rows[i-1].SortOrder),
			})
		}
	}
	return issues, nil
}

// peers lists the rows of a column other than exclude, in position order
func (e *OrderingEngine) peers(ctx context.Context, tx interfaces.Transaction, workspaceID string, teamID types.TeamID, column types.ActionStatus, exclude model.ActionID) ([]*model.KanbanOrder, error) {
	rows, err := tx.Order().ListByColumn(ctx, workspaceID, teamID, column)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list column",
			goerr.V(TeamIDKey, teamID),
			goerr.V(ColumnKey, column))
	}

	return slices.DeleteFunc(rows, func(o *model.KanbanOrder) bool {
		return o.ActionID == exclude
	}), nil
}

// closeGap renumbers the source column of order without it
func (e *OrderingEngine) closeGap(ctx context.Context, tx interfaces.Transaction, workspaceID string, order *model.KanbanOrder) error {
	peers, err := e.peers(ctx, tx, workspaceID, order.TeamID, order.Column, order.ActionID)
	if err != nil {
		return err
	}
	return e.renumber(ctx, tx, workspaceID, peers, false)
}

// insert puts order at position of peers in column, then renumbers the column
func (e *OrderingEngine) insert(ctx context.Context, tx interfaces.Transaction, workspaceID string, order *model.KanbanOrder, peers []*model.KanbanOrder, column types.ActionStatus, position int) (*model.KanbanOrder, error) {
	position = max(0, min(position, len(peers)))
	spacing := e.spacing(workspaceID)

	respaced := false
	sortOrder, ok := neighborSortOrder(peers, position, spacing)
	if !ok {
		// No room between the neighbors: spread the peers out and retry.
		for i, p := range peers {
			p.SortOrder = int64(i+1) * spacing
		}
		respaced = true
		if sortOrder, ok = neighborSortOrder(peers, position, spacing); !ok {
			return nil, goerr.New("no sort order available after respacing",
				goerr.V(ActionIDKey, order.ActionID),
				goerr.V(PositionKey, position))
		}
	}

	placed := order.Copy()
	placed.Column = column
	placed.Position = position
	placed.SortOrder = sortOrder
	placed.LastMovedAt = e.clock()

	if err := tx.Order().Put(ctx, workspaceID, placed); err != nil {
		return nil, goerr.Wrap(err, "failed to put kanban order", goerr.V(ActionIDKey, placed.ActionID))
	}

	rows := slices.Insert(slices.Clone(peers), position, placed)
	if err := e.renumber(ctx, tx, workspaceID, rows, respaced); err != nil {
		return nil, err
	}
	return placed, nil
}

func neighborSortOrder(peers []*model.KanbanOrder, position int, spacing int64) (int64, bool) {
	var prev, next *int64
	if position > 0 {
		prev = &peers[position-1].SortOrder
	}
	if position < len(peers) {
		next = &peers[position].SortOrder
	}
	return NextSortOrder(prev, next, spacing)
}

// renumber gives the i-th row position i and writes rows whose position
// changed. With force every row is written.
func (e *OrderingEngine) renumber(ctx context.Context, tx interfaces.Transaction, workspaceID string, rows []*model.KanbanOrder, force bool) error {
	for i, row := range rows {
		if row.Position == i && !force {
			continue
		}
		row.Position = i
		if err := tx.Order().Put(ctx, workspaceID, row); err != nil {
			return goerr.Wrap(err, "failed to put kanban order", goerr.V(ActionIDKey, row.ActionID))
		}
	}
	return nil
}
