package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

func runMovementRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = "test-ws"

	t.Run("ListByAction pages newest first", func(t *testing.T) {
		repo := newRepo(t)
		actionID := model.NewActionID()
		base := now()

		created := make([]*model.ActionMovement, 0, 5)
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for i := range 5 {
				m, err := tx.Movement().Create(ctx, wsID, &model.ActionMovement{
					ID:         model.NewMovementID(),
					ActionID:   actionID,
					FromStatus: types.ActionStatusTodo,
					ToStatus:   types.ActionStatusInProgress,
					ActorID:    "U001",
					CreatedAt:  base.Add(time.Duration(i) * time.Second),
				})
				if err != nil {
					return err
				}
				created = append(created, m)
			}
			// other action
			_, err := tx.Movement().Create(ctx, wsID, &model.ActionMovement{
				ID:        model.NewMovementID(),
				ActionID:  model.NewActionID(),
				CreatedAt: base,
			})
			return err
		})

		var page1, page2, page3 []*model.ActionMovement
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			page1, err = tx.Movement().ListByAction(ctx, wsID, actionID, model.MovementQuery{Limit: 2})
			if err != nil {
				return err
			}
			page2, err = tx.Movement().ListByAction(ctx, wsID, actionID, model.MovementQuery{
				Limit: 2, After: model.CursorOf(page1[len(page1)-1]),
			})
			if err != nil {
				return err
			}
			page3, err = tx.Movement().ListByAction(ctx, wsID, actionID, model.MovementQuery{
				Limit: 2, After: model.CursorOf(page2[len(page2)-1]),
			})
			return err
		})

		gt.Array(t, page1).Length(2).Required()
		gt.Array(t, page2).Length(2).Required()
		gt.Array(t, page3).Length(1).Required()
		gt.Value(t, page1[0].ID).Equal(created[4].ID)
		gt.Value(t, page1[1].ID).Equal(created[3].ID)
		gt.Value(t, page2[0].ID).Equal(created[2].ID)
		gt.Value(t, page2[1].ID).Equal(created[1].ID)
		gt.Value(t, page3[0].ID).Equal(created[0].ID)
	})

	t.Run("equal timestamps break ties by ID", func(t *testing.T) {
		repo := newRepo(t)
		actionID := model.NewActionID()
		ts := now()

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for _, id := range []model.MovementID{"m-1", "m-3", "m-2"} {
				if _, err := tx.Movement().Create(ctx, wsID, &model.ActionMovement{
					ID: id, ActionID: actionID, CreatedAt: ts,
				}); err != nil {
					return err
				}
			}
			return nil
		})

		var all []*model.ActionMovement
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			all, err = tx.Movement().ListByAction(ctx, wsID, actionID, model.MovementQuery{})
			return err
		})

		gt.Array(t, all).Length(3).Required()
		gt.Value(t, all[0].ID).Equal(model.MovementID("m-3"))
		gt.Value(t, all[1].ID).Equal(model.MovementID("m-2"))
		gt.Value(t, all[2].ID).Equal(model.MovementID("m-1"))
	})

	t.Run("ListByWorkspace returns every action", func(t *testing.T) {
		repo := newRepo(t)
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for range 3 {
				if _, err := tx.Movement().Create(ctx, wsID, &model.ActionMovement{
					ID: model.NewMovementID(), ActionID: model.NewActionID(), CreatedAt: now(),
				}); err != nil {
					return err
				}
			}
			return nil
		})

		var all []*model.ActionMovement
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			all, err = tx.Movement().ListByWorkspace(ctx, wsID, model.MovementQuery{})
			return err
		})
		gt.Array(t, all).Length(3)
	})
}
