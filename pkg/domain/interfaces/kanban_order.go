package interfaces

import (
	"context"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// OrderRepository defines the interface for KanbanOrder data access.
// Only the ordering engine writes through it.
type OrderRepository interface {
	// Get retrieves the order row of an action
	Get(ctx context.Context, workspaceID string, actionID model.ActionID) (*model.KanbanOrder, error)

	// Put creates or replaces the order row of an action
	Put(ctx context.Context, workspaceID string, order *model.KanbanOrder) error

	// Delete removes the order row of an action
	Delete(ctx context.Context, workspaceID string, actionID model.ActionID) error

	// ListByColumn retrieves all rows of one column of a team board ordered by position
	ListByColumn(ctx context.Context, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error)
}
