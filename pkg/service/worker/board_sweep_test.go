package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/repository/memory"
	"github.com/secmon-lab/actionboard/pkg/service/worker"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

func TestParseSweepTarget(t *testing.T) {
	target, err := worker.ParseSweepTarget("acme/platform")
	gt.NoError(t, err).Required()
	gt.Value(t, target.WorkspaceID).Equal("acme")
	gt.Value(t, target.TeamID.String()).Equal("platform")

	for _, s := range []string{"", "acme", "/platform", "acme/", "acme/Bad Team"} {
		t.Run(s, func(t *testing.T) {
			_, err := worker.ParseSweepTarget(s)
			gt.Error(t, err)
		})
	}
}

func TestBoardSweepWorker_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	var first *usecase.ActionDetail
	for i, title := range []string{"a", "b", "c"} {
		detail, err := uc.Action.CreateAction(ctx, "acme", usecase.CreateActionInput{
			TeamID: "platform",
			Title:  title,
		})
		gt.NoError(t, err).Required()
		if i == 0 {
			first = detail
		}
	}

	target := worker.SweepTarget{WorkspaceID: "acme", TeamID: "platform"}
	w := worker.NewBoardSweepWorker(uc.Action, []worker.SweepTarget{target}, time.Hour)

	t.Run("healthy board is left alone", func(t *testing.T) {
		gt.Value(t, w.Sweep(ctx)).Equal(0)
	})

	t.Run("drifted column is reindexed", func(t *testing.T) {
		err := repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
			order, err := tx.Order().Get(ctx, "acme", first.Action.ID)
			if err != nil {
				return err
			}
			order.Position = 7
			return tx.Order().Put(ctx, "acme", order)
		})
		gt.NoError(t, err).Required()

		gt.Value(t, w.Sweep(ctx)).Equal(1)

		issues, err := uc.Action.CheckBoard(ctx, "acme", "platform")
		gt.NoError(t, err).Required()
		gt.Array(t, issues).Length(0)
	})
}

func TestBoardSweepWorker_StartStop(t *testing.T) {
	uc := usecase.New(memory.New())
	w := worker.NewBoardSweepWorker(uc.Action, nil, 10*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	bad := worker.NewBoardSweepWorker(uc.Action, nil, 0)
	gt.Error(t, bad.Start(context.Background()))
}
