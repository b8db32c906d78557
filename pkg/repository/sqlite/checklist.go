package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

const checklistColumns = `id, action_id, description, is_completed, completed_at, item_order, created_at, updated_at`

type checklistRepository struct {
	tx *sql.Tx
}

func scanChecklistItem(row scanner) (*model.ChecklistItem, error) {
	var (
		item        model.ChecklistItem
		isCompleted int
		completedAt sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(&item.ID, &item.ActionID, &item.Description, &isCompleted, &completedAt,
		&item.Order, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.IsCompleted = isCompleted != 0
	item.CompletedAt = fromNullNanos(completedAt)
	item.CreatedAt = fromNanos(createdAt)
	item.UpdatedAt = fromNanos(updatedAt)
	return &item, nil
}

func (r *checklistRepository) Create(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error) {
	_, err := r.tx.ExecContext(ctx, `INSERT INTO checklist_items (workspace_id, `+checklistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		workspaceID, string(item.ID), string(item.ActionID), item.Description, boolToInt(item.IsCompleted),
		toNullNanos(item.CompletedAt), item.Order, toNanos(item.CreatedAt), toNanos(item.UpdatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create checklist item", goerr.V("id", item.ID))
	}
	return item.Copy(), nil
}

func (r *checklistRepository) Get(ctx context.Context, workspaceID string, id model.ChecklistItemID) (*model.ChecklistItem, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items WHERE workspace_id = ? AND id = ?`,
		workspaceID, string(id))

	item, err := scanChecklistItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get checklist item", goerr.V("id", id))
	}
	return item, nil
}

func (r *checklistRepository) Update(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error) {
	result, err := r.tx.ExecContext(ctx, `UPDATE checklist_items SET
			description = ?, is_completed = ?, completed_at = ?, item_order = ?, updated_at = ?
		WHERE workspace_id = ? AND id = ?`,
		item.Description, boolToInt(item.IsCompleted), toNullNanos(item.CompletedAt), item.Order,
		toNanos(item.UpdatedAt), workspaceID, string(item.ID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update checklist item", goerr.V("id", item.ID))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get affected rows", goerr.V("id", item.ID))
	}
	if affected == 0 {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", item.ID))
	}

	return r.Get(ctx, workspaceID, item.ID)
}

func (r *checklistRepository) Delete(ctx context.Context, workspaceID string, id model.ChecklistItemID) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM checklist_items WHERE workspace_id = ? AND id = ?`,
		workspaceID, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to delete checklist item", goerr.V("id", id))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows", goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", id))
	}
	return nil
}

func (r *checklistRepository) ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID) ([]*model.ChecklistItem, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items
		WHERE workspace_id = ? AND action_id = ?
		ORDER BY item_order, created_at, id`,
		workspaceID, string(actionID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list checklist items", goerr.V("action_id", actionID))
	}
	defer rows.Close()

	items := make([]*model.ChecklistItem, 0)
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan checklist item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate checklist items")
	}
	return items, nil
}

func (r *checklistRepository) DeleteByAction(ctx context.Context, workspaceID string, actionID model.ActionID) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM checklist_items WHERE workspace_id = ? AND action_id = ?`,
		workspaceID, string(actionID)); err != nil {
		return goerr.Wrap(err, "failed to delete checklist items", goerr.V("action_id", actionID))
	}
	return nil
}
