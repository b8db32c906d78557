package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/cli/config"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/service/worker"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var boardCfg config.Board
	var repoCfg config.Repository
	var checkBoards []string

	var flags []cli.Flag
	flags = append(flags, boardCfg.Flags()...)
	flags = append(flags, &cli.StringSliceFlag{
		Name:        "check-board",
		Usage:       "Team board to check for position drift, as workspace/team (repeatable). Requires repository flags",
		Destination: &checkBoards,
	})
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the board configuration and optionally check board consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load and validate the board configuration
			registry, err := boardCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logBoard(registry)

			// Step 2: Check stored boards if requested
			if len(checkBoards) == 0 {
				logger.Info("No board specified, skipping consistency check")
				return nil
			}

			targets := make([]worker.SweepTarget, 0, len(checkBoards))
			for _, s := range checkBoards {
				target, err := worker.ParseSweepTarget(s)
				if err != nil {
					return err
				}
				targets = append(targets, target)
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithWorkspaceRegistry(registry))

			total := 0
			for _, target := range targets {
				issues, err := uc.Action.CheckBoard(ctx, target.WorkspaceID, target.TeamID)
				if err != nil {
					return goerr.Wrap(err, "board consistency check failed",
						goerr.V("workspace_id", target.WorkspaceID),
						goerr.V("team_id", target.TeamID))
				}
				for _, issue := range issues {
					logger.Warn("Board consistency issue found",
						"workspace_id", target.WorkspaceID,
						"team_id", target.TeamID,
						"column", issue.Column,
						"action_id", issue.ActionID,
						"message", issue.Message,
					)
				}
				total += len(issues)
			}

			if total > 0 {
				return fmt.Errorf("board consistency check found %d issue(s), run `actionboard reindex` to repair", total)
			}

			logger.Info("Board consistency check passed", "boards", len(targets))
			return nil
		},
	}
}

func logBoard(registry *model.WorkspaceRegistry) {
	logger := logging.Default()

	workspaces := registry.Workspaces()
	lookup := ""
	if len(workspaces) > 0 {
		lookup = workspaces[0].ID
	}
	board, err := registry.Board(lookup)
	if err != nil {
		return
	}

	columns := make([]string, 0, len(board.Columns()))
	for _, col := range board.Columns() {
		columns = append(columns, col.ID.String())
	}

	logger.Info("Configuration validation passed",
		"workspace_count", len(workspaces),
		"columns", columns,
		"initial", board.InitialColumn(),
		"sort_spacing", board.SortSpacing(),
	)
	for _, ws := range workspaces {
		logger.Info("Workspace validated", "id", ws.ID, "name", ws.Name)
	}
}
