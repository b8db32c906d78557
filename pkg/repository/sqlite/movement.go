package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

const movementColumns = `id, action_id, from_status, to_status, actor_id, notes, created_at`

type movementRepository struct {
	tx *sql.Tx
}

func scanMovement(row scanner) (*model.ActionMovement, error) {
	var (
		m         model.ActionMovement
		createdAt int64
	)
	if err := row.Scan(&m.ID, &m.ActionID, &m.FromStatus, &m.ToStatus, &m.ActorID, &m.Notes, &createdAt); err != nil {
		return nil, err
	}
	m.CreatedAt = fromNanos(createdAt)
	return &m, nil
}

func (r *movementRepository) Create(ctx context.Context, workspaceID string, movement *model.ActionMovement) (*model.ActionMovement, error) {
	_, err := r.tx.ExecContext(ctx, `INSERT INTO action_movements (workspace_id, `+movementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		workspaceID, string(movement.ID), string(movement.ActionID), string(movement.FromStatus),
		string(movement.ToStatus), movement.ActorID, movement.Notes, toNanos(movement.CreatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create movement", goerr.V("id", movement.ID))
	}
	return movement.Copy(), nil
}

func (r *movementRepository) ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID, q model.MovementQuery) ([]*model.ActionMovement, error) {
	return r.page(ctx, q, []string{"workspace_id = ?", "action_id = ?"}, workspaceID, string(actionID))
}

func (r *movementRepository) ListByWorkspace(ctx context.Context, workspaceID string, q model.MovementQuery) ([]*model.ActionMovement, error) {
	return r.page(ctx, q, []string{"workspace_id = ?"}, workspaceID)
}

func (r *movementRepository) page(ctx context.Context, q model.MovementQuery, conds []string, args ...any) ([]*model.ActionMovement, error) {
	if q.After != nil {
		conds = append(conds, "(created_at < ? OR (created_at = ? AND id < ?))")
		at := toNanos(q.After.CreatedAt)
		args = append(args, at, at, string(q.After.ID))
	}

	stmt := `SELECT ` + movementColumns + ` FROM action_movements WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list movements")
	}
	defer rows.Close()

	movements := make([]*model.ActionMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan movement")
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate movements")
	}
	return movements, nil
}
