package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/cli/config"
	httpctrl "github.com/secmon-lab/actionboard/pkg/controller/http"
	"github.com/secmon-lab/actionboard/pkg/service/worker"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/async"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var jwtSecret string
	var noAuth bool
	var sweepTargets []string
	var sweepInterval time.Duration
	var boardCfg config.Board
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ACTIONBOARD_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the board frontend, used for links in notifications (e.g., https://board.example.com)",
			Sources:     cli.EnvVars("ACTIONBOARD_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret verifying bearer tokens. The token subject is recorded as the actor",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ACTIONBOARD_JWT_SECRET"),
			Destination: &jwtSecret,
		},
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and take the actor from the X-Actor-ID header (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ACTIONBOARD_NO_AUTH"),
			Destination: &noAuth,
		},
		&cli.StringSliceFlag{
			Name:        "sweep-target",
			Usage:       "Team board checked periodically and reindexed on drift, as workspace/team (repeatable)",
			Category:    "Maintenance",
			Sources:     cli.EnvVars("ACTIONBOARD_SWEEP_TARGETS"),
			Destination: &sweepTargets,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval of the board sweep",
			Category:    "Maintenance",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("ACTIONBOARD_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, boardCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, err := boardCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load board configuration")
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

			ucOpts := []usecase.Option{
				usecase.WithWorkspaceRegistry(registry),
				usecase.WithBaseURL(baseURL),
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackNotification(slackSvc, slackCfg.ChannelID()))
				logging.Default().Info("Slack notification enabled", "slack", slackCfg)
			} else {
				logging.Default().Info("Slack not configured, movement notifications are disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			var httpOpts []httpctrl.Options
			switch {
			case jwtSecret != "":
				httpOpts = append(httpOpts, httpctrl.WithJWTSecret([]byte(jwtSecret)))
				if noAuth {
					logging.Default().Warn("--no-auth is ignored because a JWT secret is set")
				}
			case noAuth:
				httpOpts = append(httpOpts, httpctrl.WithNoAuth())
				logging.Default().Warn("Running in no-auth mode (development only)")
			}

			httpHandler, err := httpctrl.New(uc, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}

			var sweeper *worker.BoardSweepWorker
			if len(sweepTargets) > 0 {
				targets := make([]worker.SweepTarget, 0, len(sweepTargets))
				for _, s := range sweepTargets {
					target, err := worker.ParseSweepTarget(s)
					if err != nil {
						return err
					}
					targets = append(targets, target)
				}
				sweeper = worker.NewBoardSweepWorker(uc.Action, targets, sweepInterval)
				if err := sweeper.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start board sweep worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "backend", repoCfg.Backend())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if sweeper != nil {
					sweeper.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// Pending notifications run after commit
				async.Wait()

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
