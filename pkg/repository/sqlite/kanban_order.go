package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

type orderRepository struct {
	tx *sql.Tx
}

func scanKanbanOrder(row scanner) (*model.KanbanOrder, error) {
	var (
		o           model.KanbanOrder
		teamID      string
		column      string
		lastMovedAt int64
	)
	if err := row.Scan(&o.ActionID, &teamID, &column, &o.Position, &o.SortOrder, &lastMovedAt); err != nil {
		return nil, err
	}
	o.TeamID = types.TeamID(teamID)
	o.Column = types.ActionStatus(column)
	o.LastMovedAt = fromNanos(lastMovedAt)
	return &o, nil
}

func (r *orderRepository) Get(ctx context.Context, workspaceID string, actionID model.ActionID) (*model.KanbanOrder, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT action_id, team_id, column_id, position, sort_order, last_moved_at
		FROM kanban_orders WHERE workspace_id = ? AND action_id = ?`,
		workspaceID, string(actionID))

	order, err := scanKanbanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "kanban order not found", goerr.V("action_id", actionID))
		}
		return nil, goerr.Wrap(err, "failed to get kanban order", goerr.V("action_id", actionID))
	}
	return order, nil
}

func (r *orderRepository) Put(ctx context.Context, workspaceID string, order *model.KanbanOrder) error {
	_, err := r.tx.ExecContext(ctx, `INSERT INTO kanban_orders
			(workspace_id, action_id, team_id, column_id, position, sort_order, last_moved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (workspace_id, action_id) DO UPDATE SET
			team_id = excluded.team_id,
			column_id = excluded.column_id,
			position = excluded.position,
			sort_order = excluded.sort_order,
			last_moved_at = excluded.last_moved_at`,
		workspaceID, string(order.ActionID), string(order.TeamID), string(order.Column),
		order.Position, order.SortOrder, toNanos(order.LastMovedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to put kanban order", goerr.V("action_id", order.ActionID))
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, workspaceID string, actionID model.ActionID) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM kanban_orders WHERE workspace_id = ? AND action_id = ?`,
		workspaceID, string(actionID))
	if err != nil {
		return goerr.Wrap(err, "failed to delete kanban order", goerr.V("action_id", actionID))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows", goerr.V("action_id", actionID))
	}
	if affected == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, "kanban order not found", goerr.V("action_id", actionID))
	}
	return nil
}

func (r *orderRepository) ListByColumn(ctx context.Context, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT action_id, team_id, column_id, position, sort_order, last_moved_at
		FROM kanban_orders
		WHERE workspace_id = ? AND team_id = ? AND column_id = ?
		ORDER BY position, sort_order, last_moved_at, action_id`,
		workspaceID, string(teamID), string(column))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list kanban orders",
			goerr.V("team_id", teamID),
			goerr.V("column", column))
	}
	defer rows.Close()

	orders := make([]*model.KanbanOrder, 0)
	for rows.Next() {
		order, err := scanKanbanOrder(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan kanban order")
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate kanban orders")
	}
	return orders, nil
}
