package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

// ChecklistUseCase manages the checklist items of actions
type ChecklistUseCase struct {
	repo  interfaces.Repository
	clock func() time.Time
}

func NewChecklistUseCase(repo interfaces.Repository, clock func() time.Time) *ChecklistUseCase {
	return &ChecklistUseCase{repo: repo, clock: clock}
}

// AddItem attaches a new item to a non-deleted action. A supplied order is
// stored as given and other items are not renumbered; nil appends after the
// highest existing order.
func (uc *ChecklistUseCase) AddItem(ctx context.Context, workspaceID string, actionID model.ActionID, description string, order *int) (*model.ChecklistItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validationError("checklist item description is required", goerr.V(ActionIDKey, actionID))
	}
	if order != nil && *order < 0 {
		return nil, validationError("checklist item order must not be negative",
			goerr.V(ActionIDKey, actionID),
			goerr.V("order", *order))
	}

	var created *model.ChecklistItem
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		if _, err := getLive(ctx, tx, workspaceID, actionID); err != nil {
			return err
		}

		next := 0
		if order != nil {
			next = *order
		} else {
			items, err := tx.Checklist().ListByAction(ctx, workspaceID, actionID)
			if err != nil {
				return classify(err, "failed to list checklist items", goerr.V(ActionIDKey, actionID))
			}
			for _, item := range items {
				next = max(next, item.Order+1)
			}
		}

		now := uc.clock()
		item, err := tx.Checklist().Create(ctx, workspaceID, &model.ChecklistItem{
			ID:          model.NewChecklistItemID(),
			ActionID:    actionID,
			Description: description,
			Order:       next,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return goerr.Wrap(err, "failed to create checklist item", goerr.V(ActionIDKey, actionID))
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ToggleItem flips completion of an item
func (uc *ChecklistUseCase) ToggleItem(ctx context.Context, workspaceID string, itemID model.ChecklistItemID) (*model.ChecklistItem, error) {
	var updated *model.ChecklistItem
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		item, err := tx.Checklist().Get(ctx, workspaceID, itemID)
		if err != nil {
			return notFoundAs(err, ErrChecklistItemNotFound, "checklist item not found", goerr.V(ChecklistItemIDKey, itemID))
		}

		item.Toggle(uc.clock())
		updated, err = tx.Checklist().Update(ctx, workspaceID, item)
		if err != nil {
			return goerr.Wrap(err, "failed to toggle checklist item", goerr.V(ChecklistItemIDKey, itemID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes one item. Remaining items keep their order.
func (uc *ChecklistUseCase) DeleteItem(ctx context.Context, workspaceID string, itemID model.ChecklistItemID) error {
	return runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		if err := tx.Checklist().Delete(ctx, workspaceID, itemID); err != nil {
			return notFoundAs(err, ErrChecklistItemNotFound, "checklist item not found", goerr.V(ChecklistItemIDKey, itemID))
		}
		return nil
	})
}

// ReorderItems assigns order = index to each item of orderedIDs. orderedIDs
// must list every item of the action exactly once; anything else rejects the
// whole batch.
func (uc *ChecklistUseCase) ReorderItems(ctx context.Context, workspaceID string, actionID model.ActionID, orderedIDs []model.ChecklistItemID) ([]*model.ChecklistItem, error) {
	var reordered []*model.ChecklistItem
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		if _, err := getLive(ctx, tx, workspaceID, actionID); err != nil {
			return err
		}

		items, err := tx.Checklist().ListByAction(ctx, workspaceID, actionID)
		if err != nil {
			return classify(err, "failed to list checklist items", goerr.V(ActionIDKey, actionID))
		}

		byID := make(map[model.ChecklistItemID]*model.ChecklistItem, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}

		if len(orderedIDs) != len(items) {
			return validationError("reorder must list every checklist item of the action",
				goerr.V(ActionIDKey, actionID),
				goerr.V("expected", len(items)),
				goerr.V("actual", len(orderedIDs)))
		}

		seen := make(map[model.ChecklistItemID]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if _, ok := byID[id]; !ok {
				return validationError("checklist item does not belong to the action",
					goerr.V(ActionIDKey, actionID),
					goerr.V(ChecklistItemIDKey, id))
			}
			if seen[id] {
				return validationError("checklist item listed twice",
					goerr.V(ActionIDKey, actionID),
					goerr.V(ChecklistItemIDKey, id))
			}
			seen[id] = true
		}

		now := uc.clock()
		reordered = make([]*model.ChecklistItem, 0, len(orderedIDs))
		for i, id := range orderedIDs {
			item := byID[id]
			if item.Order != i {
				item.Order = i
				item.UpdatedAt = now
				if item, err = tx.Checklist().Update(ctx, workspaceID, item); err != nil {
					return goerr.Wrap(err, "failed to reorder checklist item", goerr.V(ChecklistItemIDKey, id))
				}
			}
			reordered = append(reordered, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}
