package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

func runOrderRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = "test-ws"

	t.Run("Put creates and replaces rows", func(t *testing.T) {
		repo := newRepo(t)
		id := model.NewActionID()

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			return tx.Order().Put(ctx, wsID, &model.KanbanOrder{
				ActionID: id, TeamID: "team-a", Column: types.ActionStatusTodo,
				Position: 0, SortOrder: 1000, LastMovedAt: now(),
			})
		})
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			return tx.Order().Put(ctx, wsID, &model.KanbanOrder{
				ActionID: id, TeamID: "team-a", Column: types.ActionStatusInProgress,
				Position: 0, SortOrder: 1000, LastMovedAt: now(),
			})
		})

		var got *model.KanbanOrder
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			got, err = tx.Order().Get(ctx, wsID, id)
			return err
		})
		gt.Value(t, got.Column).Equal(types.ActionStatusInProgress)
		gt.Value(t, got.SortOrder).Equal(int64(1000))
	})

	t.Run("ListByColumn orders by position", func(t *testing.T) {
		repo := newRepo(t)
		ids := []model.ActionID{model.NewActionID(), model.NewActionID(), model.NewActionID()}

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			// stored out of order on purpose
			for _, pos := range []int{2, 0, 1} {
				if err := tx.Order().Put(ctx, wsID, &model.KanbanOrder{
					ActionID: ids[pos], TeamID: "team-a", Column: types.ActionStatusTodo,
					Position: pos, SortOrder: int64(pos+1) * 1000, LastMovedAt: now(),
				}); err != nil {
					return err
				}
			}
			// other column and other team must not leak in
			if err := tx.Order().Put(ctx, wsID, &model.KanbanOrder{
				ActionID: model.NewActionID(), TeamID: "team-a", Column: types.ActionStatusDone,
				LastMovedAt: now(),
			}); err != nil {
				return err
			}
			return tx.Order().Put(ctx, wsID, &model.KanbanOrder{
				ActionID: model.NewActionID(), TeamID: "team-b", Column: types.ActionStatusTodo,
				LastMovedAt: now(),
			})
		})

		var orders []*model.KanbanOrder
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			orders, err = tx.Order().ListByColumn(ctx, wsID, "team-a", types.ActionStatusTodo)
			return err
		})

		gt.Array(t, orders).Length(3).Required()
		for i, o := range orders {
			gt.Value(t, o.Position).Equal(i)
			gt.Value(t, o.ActionID).Equal(ids[i])
		}
	})

	t.Run("ListByColumn sees writes of the same transaction", func(t *testing.T) {
		repo := newRepo(t)
		keep := model.NewActionID()
		drop := model.NewActionID()

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for i, id := range []model.ActionID{keep, drop} {
				if err := tx.Order().Put(ctx, wsID, &model.KanbanOrder{
					ActionID: id, TeamID: "team-a", Column: types.ActionStatusTodo,
					Position: i, LastMovedAt: now(),
				}); err != nil {
					return err
				}
			}
			return nil
		})

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			if err := tx.Order().Delete(ctx, wsID, drop); err != nil {
				return err
			}
			added := model.NewActionID()
			if err := tx.Order().Put(ctx, wsID, &model.KanbanOrder{
				ActionID: added, TeamID: "team-a", Column: types.ActionStatusTodo,
				Position: 1, LastMovedAt: now(),
			}); err != nil {
				return err
			}

			orders, err := tx.Order().ListByColumn(ctx, wsID, "team-a", types.ActionStatusTodo)
			if err != nil {
				return err
			}
			gt.Array(t, orders).Length(2).Required()
			gt.Value(t, orders[0].ActionID).Equal(keep)
			gt.Value(t, orders[1].ActionID).Equal(added)
			return nil
		})
	})

	t.Run("Delete returns ErrNotFound for missing row", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			return tx.Order().Delete(ctx, wsID, model.NewActionID())
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}
