package worker

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
)

// BoardMaintainer inspects and repairs team boards
type BoardMaintainer interface {
	CheckBoard(ctx context.Context, workspaceID string, teamID types.TeamID) ([]usecase.ColumnIssue, error)
	ReindexBoard(ctx context.Context, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error)
}

// SweepTarget is one team board watched by the sweep worker
type SweepTarget struct {
	WorkspaceID string
	TeamID      types.TeamID
}

// ParseSweepTarget parses "workspace/team"
func ParseSweepTarget(s string) (SweepTarget, error) {
	ws, team, ok := strings.Cut(s, "/")
	if !ok || ws == "" || team == "" {
		return SweepTarget{}, goerr.New("sweep target must be workspace/team", goerr.V("target", s))
	}
	teamID := types.TeamID(team)
	if err := teamID.Validate(); err != nil {
		return SweepTarget{}, goerr.Wrap(err, "invalid team ID in sweep target", goerr.V("target", s))
	}
	return SweepTarget{WorkspaceID: ws, TeamID: teamID}, nil
}

// BoardSweepWorker periodically checks team boards and reindexes columns
// whose positions drifted.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Reindex runs in its own transaction per column, so concurrent moves only
//   cause a conflict that is retried on the next tick
type BoardSweepWorker struct {
	maintainer BoardMaintainer
	targets    []SweepTarget
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewBoardSweepWorker creates a new worker sweeping targets every interval
func NewBoardSweepWorker(maintainer BoardMaintainer, targets []SweepTarget, interval time.Duration) *BoardSweepWorker {
	return &BoardSweepWorker{
		maintainer: maintainer,
		targets:    targets,
		interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background sweep loop. It does not block.
func (w *BoardSweepWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("sweep interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Board sweep worker starting",
		"interval", w.interval.String(),
		"targets", len(w.targets))

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *BoardSweepWorker) Stop() {
	logging.Default().Info("Board sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Board sweep worker stopped")
}

func (w *BoardSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Board sweep worker context cancelled")
			return
		}
	}
}

// Sweep runs one cycle over every target and returns the number of
// reindexed columns. Failures are logged and skipped.
func (w *BoardSweepWorker) Sweep(ctx context.Context) int {
	repaired := 0
	for _, target := range w.targets {
		n, err := w.sweepTarget(ctx, target)
		if err != nil {
			logging.Default().Error("Board sweep failed (will retry next interval)",
				"workspace_id", target.WorkspaceID,
				"team_id", target.TeamID,
				"error", err.Error())
			continue
		}
		repaired += n
	}
	return repaired
}

func (w *BoardSweepWorker) sweepTarget(ctx context.Context, target SweepTarget) (int, error) {
	issues, err := w.maintainer.CheckBoard(ctx, target.WorkspaceID, target.TeamID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to check board")
	}
	if len(issues) == 0 {
		return 0, nil
	}

	var columns []types.ActionStatus
	seen := make(map[types.ActionStatus]bool)
	for _, issue := range issues {
		if !seen[issue.Column] {
			seen[issue.Column] = true
			columns = append(columns, issue.Column)
		}
	}

	for _, column := range columns {
		rows, err := w.maintainer.ReindexBoard(ctx, target.WorkspaceID, target.TeamID, column)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to reindex column", goerr.V("column", column))
		}
		logging.Default().Warn("Reindexed drifted column",
			"workspace_id", target.WorkspaceID,
			"team_id", target.TeamID,
			"column", column,
			"issues", len(issues),
			"rows", len(rows))
	}
	return len(columns), nil
}
