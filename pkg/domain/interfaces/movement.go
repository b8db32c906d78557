package interfaces

import (
	"context"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

// MovementRepository is the append-only ledger of action movements.
// Rows are never updated or deleted.
type MovementRepository interface {
	Create(ctx context.Context, workspaceID string, movement *model.ActionMovement) (*model.ActionMovement, error)

	// ListByAction returns one page of an action's movements, newest first
	ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID, query model.MovementQuery) ([]*model.ActionMovement, error)

	// ListByWorkspace returns one page of all movements of a workspace, newest first
	ListByWorkspace(ctx context.Context, workspaceID string, query model.MovementQuery) ([]*model.ActionMovement, error)
}
