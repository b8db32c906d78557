package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/cli/config"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// maxReindexConcurrency bounds concurrent column transactions
const maxReindexConcurrency = 4

type reindexResult struct {
	column types.ActionStatus
	rows   int
	err    error
}

func cmdReindex() *cli.Command {
	var workspaceID string
	var teamID string
	var columns []string
	var boardCfg config.Board
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "workspace",
			Aliases:     []string{"w"},
			Usage:       "Workspace ID",
			Required:    true,
			Destination: &workspaceID,
		},
		&cli.StringFlag{
			Name:        "team",
			Aliases:     []string{"t"},
			Usage:       "Team ID whose board is reindexed",
			Required:    true,
			Destination: &teamID,
		},
		&cli.StringSliceFlag{
			Name:        "column",
			Usage:       "Column to reindex (repeatable). All board columns when omitted",
			Destination: &columns,
		},
	}
	flags = append(flags, boardCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "reindex",
		Usage: "Rewrite positions and sort orders of a team board",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, err := boardCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load board configuration")
			}
			board, err := registry.Board(workspaceID)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve board", goerr.V("workspace_id", workspaceID))
			}

			targets := make([]types.ActionStatus, 0, len(columns))
			for _, col := range columns {
				status := types.ActionStatus(col)
				if !board.HasColumn(status) {
					return goerr.New("column is not declared by the board", goerr.V("column", col))
				}
				targets = append(targets, status)
			}
			if len(targets) == 0 {
				for _, col := range board.Columns() {
					targets = append(targets, col.ID)
				}
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithWorkspaceRegistry(registry))
			results := reindexColumns(ctx, uc, workspaceID, types.TeamID(teamID), targets)
			return printReindexResults(c.Root().Writer, results)
		},
	}
}

// reindexColumns reindexes each column in its own transaction. A failed
// column does not stop the others.
func reindexColumns(ctx context.Context, uc *usecase.UseCases, workspaceID string, teamID types.TeamID, columns []types.ActionStatus) []reindexResult {
	results := make([]reindexResult, len(columns))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxReindexConcurrency)
	for i, column := range columns {
		eg.Go(func() error {
			rows, err := uc.Action.ReindexBoard(ctx, workspaceID, teamID, column)
			results[i] = reindexResult{column: column, rows: len(rows), err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func printReindexResults(w io.Writer, results []reindexResult) error {
	ok := color.New(color.FgGreen)
	ng := color.New(color.FgRed)

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			_, _ = ng.Fprintf(w, "✗ %s: %v\n", r.column, r.err)
			continue
		}
		_, _ = ok.Fprintf(w, "✓ %s: %d card(s)\n", r.column, r.rows)
	}

	if failed > 0 {
		return goerr.New(fmt.Sprintf("%d column(s) failed to reindex", failed))
	}
	return nil
}
