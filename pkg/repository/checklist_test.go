package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

func newTestItem(actionID model.ActionID, description string, order int) *model.ChecklistItem {
	ts := now()
	return &model.ChecklistItem{
		ID:          model.NewChecklistItemID(),
		ActionID:    actionID,
		Description: description,
		Order:       order,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func runChecklistRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = "test-ws"

	t.Run("ListByAction orders by Order", func(t *testing.T) {
		repo := newRepo(t)
		actionID := model.NewActionID()
		second := newTestItem(actionID, "second", 1)
		first := newTestItem(actionID, "first", 0)

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for _, item := range []*model.ChecklistItem{second, first, newTestItem(model.NewActionID(), "other", 0)} {
				if _, err := tx.Checklist().Create(ctx, wsID, item); err != nil {
					return err
				}
			}
			return nil
		})

		var items []*model.ChecklistItem
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			items, err = tx.Checklist().ListByAction(ctx, wsID, actionID)
			return err
		})

		gt.Array(t, items).Length(2).Required()
		gt.Value(t, items[0].ID).Equal(first.ID)
		gt.Value(t, items[1].ID).Equal(second.ID)
	})

	t.Run("Update persists completion", func(t *testing.T) {
		repo := newRepo(t)
		item := newTestItem(model.NewActionID(), "verify backups", 0)

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Checklist().Create(ctx, wsID, item)
			return err
		})

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			got, err := tx.Checklist().Get(ctx, wsID, item.ID)
			if err != nil {
				return err
			}
			got.Toggle(now())
			_, err = tx.Checklist().Update(ctx, wsID, got)
			return err
		})

		var got *model.ChecklistItem
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			got, err = tx.Checklist().Get(ctx, wsID, item.ID)
			return err
		})
		gt.Bool(t, got.IsCompleted).True()
		gt.Value(t, got.CompletedAt).NotNil()
	})

	t.Run("Delete and DeleteByAction remove rows", func(t *testing.T) {
		repo := newRepo(t)
		actionID := model.NewActionID()
		items := []*model.ChecklistItem{
			newTestItem(actionID, "a", 0),
			newTestItem(actionID, "b", 1),
			newTestItem(actionID, "c", 2),
		}

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for _, item := range items {
				if _, err := tx.Checklist().Create(ctx, wsID, item); err != nil {
					return err
				}
			}
			return nil
		})

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			return tx.Checklist().Delete(ctx, wsID, items[0].ID)
		})

		err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Checklist().Get(ctx, wsID, items[0].ID)
			return err
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			return tx.Checklist().DeleteByAction(ctx, wsID, actionID)
		})

		var remaining []*model.ChecklistItem
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			remaining, err = tx.Checklist().ListByAction(ctx, wsID, actionID)
			return err
		})
		gt.Array(t, remaining).Length(0)
	})
}
