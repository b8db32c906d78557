package memory

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

type checklistRepository struct {
	state *state
}

func (r *checklistRepository) workspace(workspaceID string) map[model.ChecklistItemID]*model.ChecklistItem {
	ws, exists := r.state.items[workspaceID]
	if !exists {
		ws = make(map[model.ChecklistItemID]*model.ChecklistItem)
		r.state.items[workspaceID] = ws
	}
	return ws
}

func (r *checklistRepository) Create(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error) {
	ws := r.workspace(workspaceID)
	if _, exists := ws[item.ID]; exists {
		return nil, goerr.New("checklist item already exists", goerr.V("id", item.ID))
	}

	ws[item.ID] = item.Copy()
	return item.Copy(), nil
}

func (r *checklistRepository) Get(ctx context.Context, workspaceID string, id model.ChecklistItemID) (*model.ChecklistItem, error) {
	item, exists := r.state.items[workspaceID][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", id))
	}
	return item.Copy(), nil
}

func (r *checklistRepository) Update(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error) {
	ws := r.workspace(workspaceID)
	existing, exists := ws[item.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", item.ID))
	}

	updated := item.Copy()
	updated.CreatedAt = existing.CreatedAt
	ws[item.ID] = updated
	return updated.Copy(), nil
}

func (r *checklistRepository) Delete(ctx context.Context, workspaceID string, id model.ChecklistItemID) error {
	if _, exists := r.state.items[workspaceID][id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", id))
	}
	delete(r.state.items[workspaceID], id)
	return nil
}

func (r *checklistRepository) ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID) ([]*model.ChecklistItem, error) {
	items := make([]*model.ChecklistItem, 0)
	for _, item := range r.state.items[workspaceID] {
		if item.ActionID == actionID {
			items = append(items, item.Copy())
		}
	}

	slices.SortFunc(items, model.CompareChecklistItem)
	return items, nil
}

func (r *checklistRepository) DeleteByAction(ctx context.Context, workspaceID string, actionID model.ActionID) error {
	ws := r.state.items[workspaceID]
	for id, item := range ws {
		if item.ActionID == actionID {
			delete(ws, id)
		}
	}
	return nil
}
