package memory

import (
	"context"
	"slices"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

type movementRepository struct {
	state *state
}

func (r *movementRepository) Create(ctx context.Context, workspaceID string, movement *model.ActionMovement) (*model.ActionMovement, error) {
	r.state.movements[workspaceID] = append(r.state.movements[workspaceID], movement.Copy())
	return movement.Copy(), nil
}

func (r *movementRepository) ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID, query model.MovementQuery) ([]*model.ActionMovement, error) {
	return r.page(workspaceID, query, func(m *model.ActionMovement) bool {
		return m.ActionID == actionID
	}), nil
}

func (r *movementRepository) ListByWorkspace(ctx context.Context, workspaceID string, query model.MovementQuery) ([]*model.ActionMovement, error) {
	return r.page(workspaceID, query, func(*model.ActionMovement) bool { return true }), nil
}

func (r *movementRepository) page(workspaceID string, query model.MovementQuery, match func(*model.ActionMovement) bool) []*model.ActionMovement {
	matched := make([]*model.ActionMovement, 0)
	for _, m := range r.state.movements[workspaceID] {
		if match(m) && query.After.After(m) {
			matched = append(matched, m.Copy())
		}
	}

	// Newest first
	slices.SortFunc(matched, func(a, b *model.ActionMovement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	})

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched
}
