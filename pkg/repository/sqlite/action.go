package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

const actionColumns = `id, team_id, title, description, assignee_ids, due_date, status,
	is_blocked, blocked_reason, created_at, updated_at, deleted_at`

type actionRepository struct {
	tx *sql.Tx
}

func scanAction(row scanner) (*model.Action, error) {
	var (
		a             model.Action
		teamID        string
		status        string
		assigneeIDs   string
		dueDate       sql.NullInt64
		isBlocked     int
		blockedReason sql.NullString
		createdAt     int64
		updatedAt     int64
		deletedAt     sql.NullInt64
	)
	if err := row.Scan(&a.ID, &teamID, &a.Title, &a.Description, &assigneeIDs, &dueDate, &status,
		&isBlocked, &blockedReason, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(assigneeIDs), &a.AssigneeIDs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode assignee IDs", goerr.V("id", a.ID))
	}
	if a.AssigneeIDs == nil {
		a.AssigneeIDs = []string{}
	}

	a.TeamID = types.TeamID(teamID)
	a.Status = types.ActionStatus(status)
	a.DueDate = fromNullNanos(dueDate)
	a.IsBlocked = isBlocked != 0
	a.BlockedReason = fromNullString(blockedReason)
	a.CreatedAt = fromNanos(createdAt)
	a.UpdatedAt = fromNanos(updatedAt)
	a.DeletedAt = fromNullNanos(deletedAt)
	return &a, nil
}

func encodeAssignees(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode assignee IDs")
	}
	return string(raw), nil
}

func (r *actionRepository) Create(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error) {
	assignees, err := encodeAssignees(action.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	_, err = r.tx.ExecContext(ctx, `INSERT INTO actions (workspace_id, `+actionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		workspaceID, string(action.ID), string(action.TeamID), action.Title, action.Description, assignees,
		toNullNanos(action.DueDate), string(action.Status), boolToInt(action.IsBlocked),
		toNullString(action.BlockedReason), toNanos(action.CreatedAt), toNanos(action.UpdatedAt),
		toNullNanos(action.DeletedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create action", goerr.V("id", action.ID))
	}

	return action.Copy(), nil
}

func (r *actionRepository) Get(ctx context.Context, workspaceID string, id model.ActionID) (*model.Action, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM actions WHERE workspace_id = ? AND id = ?`,
		workspaceID, string(id))

	action, err := scanAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("id", id))
	}
	return action, nil
}

func (r *actionRepository) Update(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error) {
	assignees, err := encodeAssignees(action.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	result, err := r.tx.ExecContext(ctx, `UPDATE actions SET
			team_id = ?, title = ?, description = ?, assignee_ids = ?, due_date = ?, status = ?,
			is_blocked = ?, blocked_reason = ?, updated_at = ?, deleted_at = ?
		WHERE workspace_id = ? AND id = ?`,
		string(action.TeamID), action.Title, action.Description, assignees, toNullNanos(action.DueDate),
		string(action.Status), boolToInt(action.IsBlocked), toNullString(action.BlockedReason),
		toNanos(action.UpdatedAt), toNullNanos(action.DeletedAt),
		workspaceID, string(action.ID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V("id", action.ID))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get affected rows", goerr.V("id", action.ID))
	}
	if affected == 0 {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	return r.Get(ctx, workspaceID, action.ID)
}

func (r *actionRepository) ListByTeam(ctx context.Context, workspaceID string, teamID types.TeamID) ([]*model.Action, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+actionColumns+` FROM actions
		WHERE workspace_id = ? AND team_id = ? AND deleted_at IS NULL
		ORDER BY created_at, id`,
		workspaceID, string(teamID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions", goerr.V("team_id", teamID))
	}
	defer rows.Close()

	actions := make([]*model.Action, 0)
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan action", goerr.V("team_id", teamID))
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate actions", goerr.V("team_id", teamID))
	}
	return actions, nil
}
