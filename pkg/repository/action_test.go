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

func newTestAction(teamID types.TeamID, title string) *model.Action {
	ts := now()
	return &model.Action{
		ID:          model.NewActionID(),
		TeamID:      teamID,
		Title:       title,
		Description: "description of " + title,
		AssigneeIDs: []string{"U001", "U002"},
		Status:      types.ActionStatusTodo,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func runActionRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	const wsID = "test-ws"

	t.Run("Create and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		action := newTestAction("team-a", "Rotate credentials")
		due := now().Add(72 * time.Hour)
		action.DueDate = &due

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Create(ctx, wsID, action)
			return err
		})

		var got *model.Action
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			got, err = tx.Action().Get(ctx, wsID, action.ID)
			return err
		})

		gt.Value(t, got.ID).Equal(action.ID)
		gt.Value(t, got.TeamID).Equal(action.TeamID)
		gt.Value(t, got.Title).Equal(action.Title)
		gt.Value(t, got.AssigneeIDs).Equal(action.AssigneeIDs)
		gt.Value(t, got.Status).Equal(types.ActionStatusTodo)
		gt.Bool(t, got.IsBlocked).False()
		gt.Value(t, got.BlockedReason).Nil()
		gt.Value(t, got.DueDate).NotNil()
		gt.Bool(t, got.DueDate.Equal(due)).True()
		gt.Bool(t, got.CreatedAt.Equal(action.CreatedAt)).True()
		gt.Value(t, got.DeletedAt).Nil()
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Get(ctx, wsID, model.NewActionID())
			return err
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Update persists block state and soft delete", func(t *testing.T) {
		repo := newRepo(t)
		action := newTestAction("team-a", "Patch servers")

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Create(ctx, wsID, action)
			return err
		})

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			a, err := tx.Action().Get(ctx, wsID, action.ID)
			if err != nil {
				return err
			}
			a.Block("waiting for vendor")
			a.Title = "Patch all servers"
			deletedAt := now()
			a.DeletedAt = &deletedAt
			_, err = tx.Action().Update(ctx, wsID, a)
			return err
		})

		var got *model.Action
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			got, err = tx.Action().Get(ctx, wsID, action.ID)
			return err
		})

		gt.Value(t, got.Title).Equal("Patch all servers")
		gt.Bool(t, got.IsBlocked).True()
		gt.Value(t, *got.BlockedReason).Equal("waiting for vendor")
		gt.Bool(t, got.IsDeleted()).True()
	})

	t.Run("Update returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Update(ctx, wsID, newTestAction("team-a", "ghost"))
			return err
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("ListByTeam skips other teams and deleted actions", func(t *testing.T) {
		repo := newRepo(t)
		a1 := newTestAction("team-a", "first")
		a2 := newTestAction("team-a", "second")
		other := newTestAction("team-b", "other team")
		deleted := newTestAction("team-a", "deleted")
		deletedAt := now()
		deleted.DeletedAt = &deletedAt

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			for _, a := range []*model.Action{a1, a2, other, deleted} {
				if _, err := tx.Action().Create(ctx, wsID, a); err != nil {
					return err
				}
			}
			return nil
		})

		var actions []*model.Action
		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			var err error
			actions, err = tx.Action().ListByTeam(ctx, wsID, "team-a")
			return err
		})

		gt.Array(t, actions).Length(2)
		ids := map[model.ActionID]bool{}
		for _, a := range actions {
			ids[a.ID] = true
		}
		gt.Bool(t, ids[a1.ID]).True()
		gt.Bool(t, ids[a2.ID]).True()
	})

	t.Run("workspaces are isolated", func(t *testing.T) {
		repo := newRepo(t)
		action := newTestAction("team-a", "isolated")

		inTx(t, repo, func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Create(ctx, wsID, action)
			return err
		})

		err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
			_, err := tx.Action().Get(ctx, "another-ws", action.ID)
			return err
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}
