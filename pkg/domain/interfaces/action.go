package interfaces

import (
	"context"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// ActionRepository defines the interface for Action data access
type ActionRepository interface {
	// Create stores a new action. ID and timestamps are set by the caller.
	Create(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error)

	// Get retrieves an action by ID, including soft-deleted ones
	Get(ctx context.Context, workspaceID string, id model.ActionID) (*model.Action, error)

	// Update replaces an existing action
	Update(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error)

	// ListByTeam retrieves the non-deleted actions of a team
	ListByTeam(ctx context.Context, workspaceID string, teamID types.TeamID) ([]*model.Action, error)
}
