package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

func TestNextSortOrder(t *testing.T) {
	testCases := []struct {
		name   string
		prev   *int64
		next   *int64
		want   int64
		wantOK bool
	}{
		{name: "empty column", want: 1000, wantOK: true},
		{name: "append", prev: ptr[int64](3000), want: 4000, wantOK: true},
		{name: "prepend", next: ptr[int64](1000), want: 0, wantOK: true},
		{name: "prepend below zero", next: ptr[int64](0), want: -1000, wantOK: true},
		{name: "midpoint", prev: ptr[int64](1000), next: ptr[int64](2000), want: 1500, wantOK: true},
		{name: "odd gap rounds down", prev: ptr[int64](1), next: ptr[int64](4), want: 2, wantOK: true},
		{name: "gap of two", prev: ptr[int64](1), next: ptr[int64](3), want: 2, wantOK: true},
		{name: "adjacent", prev: ptr[int64](1), next: ptr[int64](2), wantOK: false},
		{name: "equal", prev: ptr[int64](5), next: ptr[int64](5), wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := usecase.NextSortOrder(tc.prev, tc.next, 1000)
			gt.Value(t, ok).Equal(tc.wantOK)
			if tc.wantOK {
				gt.Value(t, got).Equal(tc.want)
			}
		})
	}
}

func narrowBoardRegistry(t *testing.T) (*model.WorkspaceRegistry, *model.Board) {
	t.Helper()
	board, err := model.NewBoard(model.DefaultBoard().Columns(), model.WithSortSpacing(2))
	gt.NoError(t, err).Required()
	return model.NewWorkspaceRegistry(model.WithFallbackBoard(board)), board
}

func TestOrderingRespacesWhenNeighborsAreAdjacent(t *testing.T) {
	registry, board := narrowBoardRegistry(t)
	uc, repo := setupUseCases(t, usecase.WithWorkspaceRegistry(registry))
	ctx := context.Background()

	createAction(t, uc, "first")
	createAction(t, uc, "last")

	// Every insert lands between "first" and the previous insert, which
	// exhausts the gap after one step with spacing 2.
	want := []string{"first"}
	for i := range 6 {
		title := fmt.Sprintf("insert-%d", i)
		_, err := uc.Action.CreateAction(ctx, testWorkspaceID, usecase.CreateActionInput{
			TeamID:   testTeamID,
			Title:    title,
			Position: ptr(1),
		})
		gt.NoError(t, err).Required()
		want = append([]string{"first", title}, want[1:]...)
		assertContiguous(t, repo, board)
	}
	want = append(want, "last")

	gt.Value(t, columnTitles(t, uc, types.ActionStatusTodo)).Equal(want)
}

func TestOrderingMovesIntoCrowdedColumn(t *testing.T) {
	registry, board := narrowBoardRegistry(t)
	uc, repo := setupUseCases(t, usecase.WithWorkspaceRegistry(registry))
	ctx := context.Background()

	var ids []model.ActionID
	for i := range 5 {
		ids = append(ids, createAction(t, uc, fmt.Sprintf("a%d", i)).Action.ID)
	}

	for _, id := range ids[1:] {
		_, err := uc.Action.MoveAction(ctx, testWorkspaceID, id, types.ActionStatusDone, 1, "", "")
		gt.NoError(t, err).Required()
		assertContiguous(t, repo, board)
	}

	gt.Value(t, columnTitles(t, uc, types.ActionStatusTodo)).Equal([]string{"a0"})
	gt.Value(t, columnTitles(t, uc, types.ActionStatusDone)).Equal([]string{"a1", "a4", "a3", "a2"})
}

func TestReindexBoard(t *testing.T) {
	uc, repo := setupUseCases(t)
	ctx := context.Background()

	a := createAction(t, uc, "a")
	b := createAction(t, uc, "b")
	c := createAction(t, uc, "c")

	// Corrupt the column: duplicate positions and a sort order tie broken by
	// LastMovedAt
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	corrupt := []*model.KanbanOrder{
		{ActionID: a.Action.ID, TeamID: testTeamID, Column: types.ActionStatusTodo, Position: 0, SortOrder: 50, LastMovedAt: base.Add(time.Second)},
		{ActionID: b.Action.ID, TeamID: testTeamID, Column: types.ActionStatusTodo, Position: 0, SortOrder: 50, LastMovedAt: base},
		{ActionID: c.Action.ID, TeamID: testTeamID, Column: types.ActionStatusTodo, Position: 7, SortOrder: 10, LastMovedAt: base},
	}
	err := repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		for _, o := range corrupt {
			if err := tx.Order().Put(ctx, testWorkspaceID, o); err != nil {
				return err
			}
		}
		return nil
	})
	gt.NoError(t, err).Required()

	rows, err := uc.Action.ReindexBoard(ctx, testWorkspaceID, testTeamID, types.ActionStatusTodo)
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(3).Required()

	gt.Value(t, rows[0].ActionID).Equal(c.Action.ID)
	gt.Value(t, rows[1].ActionID).Equal(b.Action.ID)
	gt.Value(t, rows[2].ActionID).Equal(a.Action.ID)
	for i, row := range rows {
		gt.Value(t, row.Position).Equal(i)
		gt.Value(t, row.SortOrder).Equal(int64(i+1) * model.DefaultSortSpacing)
	}

	assertContiguous(t, repo, model.DefaultBoard())
	gt.Value(t, columnTitles(t, uc, types.ActionStatusTodo)).Equal([]string{"c", "b", "a"})

	_, err = uc.Action.ReindexBoard(ctx, testWorkspaceID, testTeamID, "ARCHIVED")
	gt.Error(t, err).Is(usecase.ErrValidation)
}

func TestCheckBoard(t *testing.T) {
	uc, repo := setupUseCases(t)
	ctx := context.Background()

	a := createAction(t, uc, "a")
	createAction(t, uc, "b")

	issues, err := uc.Action.CheckBoard(ctx, testWorkspaceID, testTeamID)
	gt.NoError(t, err).Required()
	gt.Array(t, issues).Length(0)

	err = repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		order, err := tx.Order().Get(ctx, testWorkspaceID, a.Action.ID)
		if err != nil {
			return err
		}
		order.Position = 5
		return tx.Order().Put(ctx, testWorkspaceID, order)
	})
	gt.NoError(t, err).Required()

	issues, err = uc.Action.CheckBoard(ctx, testWorkspaceID, testTeamID)
	gt.NoError(t, err).Required()
	gt.Array(t, issues).Length(3).Required()
	gt.Value(t, issues[0].Column).Equal(types.ActionStatusTodo)

	_, err = uc.Action.ReindexBoard(ctx, testWorkspaceID, testTeamID, types.ActionStatusTodo)
	gt.NoError(t, err).Required()

	issues, err = uc.Action.CheckBoard(ctx, testWorkspaceID, testTeamID)
	gt.NoError(t, err).Required()
	gt.Array(t, issues).Length(0)
}
