package memory

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

type orderRepository struct {
	state *state
}

func (r *orderRepository) Get(ctx context.Context, workspaceID string, actionID model.ActionID) (*model.KanbanOrder, error) {
	order, exists := r.state.orders[workspaceID][actionID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "kanban order not found", goerr.V("action_id", actionID))
	}
	return order.Copy(), nil
}

func (r *orderRepository) Put(ctx context.Context, workspaceID string, order *model.KanbanOrder) error {
	ws, exists := r.state.orders[workspaceID]
	if !exists {
		ws = make(map[model.ActionID]*model.KanbanOrder)
		r.state.orders[workspaceID] = ws
	}
	ws[order.ActionID] = order.Copy()
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, workspaceID string, actionID model.ActionID) error {
	if _, exists := r.state.orders[workspaceID][actionID]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "kanban order not found", goerr.V("action_id", actionID))
	}
	delete(r.state.orders[workspaceID], actionID)
	return nil
}

func (r *orderRepository) ListByColumn(ctx context.Context, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error) {
	orders := make([]*model.KanbanOrder, 0)
	for _, order := range r.state.orders[workspaceID] {
		if order.TeamID == teamID && order.Column == column {
			orders = append(orders, order.Copy())
		}
	}

	slices.SortFunc(orders, model.CompareKanbanPosition)
	return orders, nil
}
