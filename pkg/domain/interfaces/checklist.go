package interfaces

import (
	"context"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

// ChecklistRepository defines the interface for ChecklistItem data access
type ChecklistRepository interface {
	Create(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error)
	Get(ctx context.Context, workspaceID string, id model.ChecklistItemID) (*model.ChecklistItem, error)
	Update(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error)
	Delete(ctx context.Context, workspaceID string, id model.ChecklistItemID) error

	// ListByAction retrieves the items of an action ordered by Order
	ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID) ([]*model.ChecklistItem, error)

	// DeleteByAction removes every item of an action
	DeleteByAction(ctx context.Context, workspaceID string, actionID model.ActionID) error
}
