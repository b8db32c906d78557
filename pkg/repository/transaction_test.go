package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

func runTransactionTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = "test-ws"

	t.Run("failed transaction leaves no trace", func(t *testing.T) {
		repo := newRepo(t)
		action := newTestAction("team-a", "rolled back")
		errAbort := errors.New("abort")

		err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			if _, err := tx.Action().Create(ctx, wsID, action); err != nil {
				return err
			}
			if _, err := tx.Checklist().Create(ctx, wsID, newTestItem(action.ID, "step", 0)); err != nil {
				return err
			}
			return errAbort
		})
		gt.Error(t, err).Is(errAbort)

		err = repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Get(ctx, wsID, action.ID)
			return err
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		var items []*model.ChecklistItem
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			items, err = tx.Checklist().ListByAction(ctx, wsID, action.ID)
			return err
		})
		gt.Array(t, items).Length(0)
	})

	t.Run("reads observe earlier writes of the same transaction", func(t *testing.T) {
		repo := newRepo(t)
		action := newTestAction("team-a", "read your writes")

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			if _, err := tx.Action().Create(ctx, wsID, action); err != nil {
				return err
			}
			got, err := tx.Action().Get(ctx, wsID, action.ID)
			if err != nil {
				return err
			}
			gt.Value(t, got.Title).Equal(action.Title)
			return nil
		})
	})
}
