package memory

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

type actionRepository struct {
	state *state
}

func (r *actionRepository) workspace(workspaceID string) map[model.ActionID]*model.Action {
	ws, exists := r.state.actions[workspaceID]
	if !exists {
		ws = make(map[model.ActionID]*model.Action)
		r.state.actions[workspaceID] = ws
	}
	return ws
}

func (r *actionRepository) Create(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error) {
	ws := r.workspace(workspaceID)
	if _, exists := ws[action.ID]; exists {
		return nil, goerr.New("action already exists", goerr.V("id", action.ID))
	}

	ws[action.ID] = action.Copy()
	return action.Copy(), nil
}

func (r *actionRepository) Get(ctx context.Context, workspaceID string, id model.ActionID) (*model.Action, error) {
	action, exists := r.state.actions[workspaceID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", id))
	}
	return action.Copy(), nil
}

func (r *actionRepository) Update(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error) {
	ws := r.workspace(workspaceID)
	existing, exists := ws[action.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	updated := action.Copy()
	updated.CreatedAt = existing.CreatedAt
	ws[action.ID] = updated
	return updated.Copy(), nil
}

func (r *actionRepository) ListByTeam(ctx context.Context, workspaceID string, teamID types.TeamID) ([]*model.Action, error) {
	actions := make([]*model.Action, 0)
	for _, action := range r.state.actions[workspaceID] {
		if action.TeamID == teamID && !action.IsDeleted() {
			actions = append(actions, action.Copy())
		}
	}

	slices.SortFunc(actions, func(a, b *model.Action) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return actions, nil
}
