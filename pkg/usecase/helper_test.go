package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/repository/memory"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

const (
	testWorkspaceID = "test-ws"
	testTeamID      = types.TeamID("platform")
)

// stepClock returns a strictly increasing time on every call
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func setupUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	clock := newStepClock()
	opts = append([]usecase.Option{usecase.WithClock(clock.Now)}, opts...)
	return usecase.New(repo, opts...), repo
}

func createAction(t *testing.T, uc *usecase.UseCases, title string) *usecase.ActionDetail {
	t.Helper()
	detail, err := uc.Action.CreateAction(context.Background(), testWorkspaceID, usecase.CreateActionInput{
		TeamID: testTeamID,
		Title:  title,
	})
	gt.NoError(t, err).Required()
	return detail
}

func ptr[T any](v T) *T {
	return &v
}

// columnTitles returns the titles of a column in position order
func columnTitles(t *testing.T, uc *usecase.UseCases, column types.ActionStatus) []string {
	t.Helper()
	view, err := uc.Action.ListBoard(context.Background(), testWorkspaceID, testTeamID)
	gt.NoError(t, err).Required()

	for _, col := range view.Columns {
		if col.Column.ID != column {
			continue
		}
		titles := make([]string, 0, len(col.Cards))
		for _, card := range col.Cards {
			titles = append(titles, card.Action.Title)
		}
		return titles
	}
	t.Fatalf("column %s not found", column)
	return nil
}

// assertContiguous checks every column of the test board: positions are
// exactly 0..N-1 and sort orders increase strictly with position
func assertContiguous(t *testing.T, repo interfaces.Repository, board *model.Board) {
	t.Helper()
	err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
		for _, col := range board.Columns() {
			rows, err := tx.Order().ListByColumn(ctx, testWorkspaceID, testTeamID, col.ID)
			if err != nil {
				return err
			}
			for i, row := range rows {
				if row.Position != i {
					t.Errorf("column %s: row %d has position %d", col.ID, i, row.Position)
				}
				if row.Column != col.ID {
					t.Errorf("column %s: row %s claims column %s", col.ID, row.ActionID, row.Column)
				}
				if i > 0 && rows[i-1].SortOrder >= row.SortOrder {
					t.Errorf("column %s: sort order not increasing at %d (%d >= %d)",
						col.ID, i, rows[i-1].SortOrder, row.SortOrder)
				}
			}
		}
		return nil
	})
	gt.NoError(t, err).Required()
}
