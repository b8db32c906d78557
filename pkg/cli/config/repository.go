package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/repository/firestore"
	"github.com/secmon-lab/actionboard/pkg/repository/memory"
	"github.com/secmon-lab/actionboard/pkg/repository/sqlite"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	sqlitePath string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, sqlite or memory)",
			Category:    "Repository",
			Value:       BackendFirestore,
			Sources:     cli.EnvVars("ACTIONBOARD_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ACTIONBOARD_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("ACTIONBOARD_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file (required when using sqlite backend, :memory: for a throwaway database)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ACTIONBOARD_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendSQLite:
		if r.sqlitePath == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "sqlite-path is required when using sqlite backend")
		}
		repo, err := sqlite.Open(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository", goerr.V("path", r.sqlitePath))
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}
