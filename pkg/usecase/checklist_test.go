package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

func TestChecklistScenario(t *testing.T) {
	uc, _ := setupUseCases(t)
	ctx := context.Background()
	action := createAction(t, uc, "with checklist")

	var items []*model.ChecklistItem
	for i, desc := range []string{"measure", "cut", "glue"} {
		item, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, desc, ptr(i))
		gt.NoError(t, err).Required()
		gt.Value(t, item.Order).Equal(i)
		gt.Bool(t, item.IsCompleted).False()
		gt.Value(t, item.CompletedAt).Nil()
		items = append(items, item)
	}

	toggled, err := uc.Checklist.ToggleItem(ctx, testWorkspaceID, items[1].ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, toggled.IsCompleted).True()
	gt.Value(t, toggled.CompletedAt).NotNil()

	reordered, err := uc.Checklist.ReorderItems(ctx, testWorkspaceID, action.Action.ID,
		[]model.ChecklistItemID{items[2].ID, items[0].ID, items[1].ID})
	gt.NoError(t, err).Required()
	gt.Array(t, reordered).Length(3).Required()
	gt.Value(t, reordered[0].ID).Equal(items[2].ID)
	gt.Value(t, reordered[1].ID).Equal(items[0].ID)
	gt.Value(t, reordered[2].ID).Equal(items[1].ID)
	for i, item := range reordered {
		gt.Value(t, item.Order).Equal(i)
	}
	gt.Bool(t, reordered[2].IsCompleted).True()

	detail, err := uc.Action.GetAction(ctx, testWorkspaceID, action.Action.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, detail.Checklist).Length(3).Required()
	gt.Value(t, detail.Checklist[0].Description).Equal("glue")
	gt.Value(t, detail.Checklist[1].Description).Equal("measure")
	gt.Value(t, detail.Checklist[2].Description).Equal("cut")

	untoggled, err := uc.Checklist.ToggleItem(ctx, testWorkspaceID, items[1].ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, untoggled.IsCompleted).False()
	gt.Value(t, untoggled.CompletedAt).Nil()
}

func TestChecklistAddItem(t *testing.T) {
	uc, _ := setupUseCases(t)
	ctx := context.Background()
	action := createAction(t, uc, "a")

	first, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "first", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, first.Order).Equal(0)

	sparse, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "sparse", ptr(5))
	gt.NoError(t, err).Required()
	gt.Value(t, sparse.Order).Equal(5)

	next, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "next", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, next.Order).Equal(6)

	_, err = uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "  ", nil)
	gt.Error(t, err).Is(usecase.ErrValidation)

	_, err = uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "negative", ptr(-1))
	gt.Error(t, err).Is(usecase.ErrValidation)

	_, err = uc.Checklist.AddItem(ctx, testWorkspaceID, model.NewActionID(), "orphan", nil)
	gt.Error(t, err).Is(usecase.ErrActionNotFound)

	// Reorder restores contiguous orders
	reordered, err := uc.Checklist.ReorderItems(ctx, testWorkspaceID, action.Action.ID,
		[]model.ChecklistItemID{first.ID, sparse.ID, next.ID})
	gt.NoError(t, err).Required()
	for i, item := range reordered {
		gt.Value(t, item.Order).Equal(i)
	}
}

func TestChecklistReorderRejectsInvalidBatch(t *testing.T) {
	uc, _ := setupUseCases(t)
	ctx := context.Background()
	action := createAction(t, uc, "a")
	other := createAction(t, uc, "b")

	x, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "x", nil)
	gt.NoError(t, err).Required()
	y, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "y", nil)
	gt.NoError(t, err).Required()
	foreign, err := uc.Checklist.AddItem(ctx, testWorkspaceID, other.Action.ID, "z", nil)
	gt.NoError(t, err).Required()

	testCases := map[string][]model.ChecklistItemID{
		"missing item":   {y.ID},
		"duplicate item": {y.ID, y.ID},
		"foreign item":   {y.ID, foreign.ID},
		"extra item":     {y.ID, x.ID, foreign.ID},
	}
	for name, ids := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Checklist.ReorderItems(ctx, testWorkspaceID, action.Action.ID, ids)
			gt.Error(t, err).Is(usecase.ErrValidation)
		})
	}

	// Nothing was written by the rejected batches
	detail, err := uc.Action.GetAction(ctx, testWorkspaceID, action.Action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, detail.Checklist[0].ID).Equal(x.ID)
	gt.Value(t, detail.Checklist[0].Order).Equal(0)
	gt.Value(t, detail.Checklist[1].ID).Equal(y.ID)
	gt.Value(t, detail.Checklist[1].Order).Equal(1)
}

func TestChecklistDeleteItem(t *testing.T) {
	uc, _ := setupUseCases(t)
	ctx := context.Background()
	action := createAction(t, uc, "a")

	x, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "x", nil)
	gt.NoError(t, err).Required()
	y, err := uc.Checklist.AddItem(ctx, testWorkspaceID, action.Action.ID, "y", nil)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Checklist.DeleteItem(ctx, testWorkspaceID, x.ID)).Required()
	gt.Error(t, uc.Checklist.DeleteItem(ctx, testWorkspaceID, x.ID)).Is(usecase.ErrChecklistItemNotFound)

	_, err = uc.Checklist.ToggleItem(ctx, testWorkspaceID, x.ID)
	gt.Error(t, err).Is(usecase.ErrChecklistItemNotFound)

	detail, err := uc.Action.GetAction(ctx, testWorkspaceID, action.Action.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, detail.Checklist).Length(1).Required()
	gt.Value(t, detail.Checklist[0].ID).Equal(y.ID)
	gt.Value(t, detail.Checklist[0].Order).Equal(1)
}
