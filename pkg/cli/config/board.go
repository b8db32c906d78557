package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// BoardFile is the TOML layout of the board configuration
//
//	[board]
//	initial = "TODO"
//	sort_spacing = 1000
//
//	[[column]]
//	id = "TODO"
//	name = "To Do"
//	transitions = ["IN_PROGRESS"]
//
//	[[workspace]]
//	id = "acme"
//	name = "Acme Inc."
type BoardFile struct {
	Board      BoardSettings `toml:"board"`
	Columns    []Column      `toml:"column"`
	Workspaces []Workspace   `toml:"workspace"`
}

type BoardSettings struct {
	Initial     string `toml:"initial"`
	SortSpacing int64  `toml:"sort_spacing"`
}

// Column is one declared workflow state
type Column struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Transitions []string `toml:"transitions"`
}

// Validate checks if the Column is valid
func (c *Column) Validate() error {
	if err := types.ActionStatus(c.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid column ID",
			goerr.V(ColumnIDKey, c.ID),
			goerr.V("error", err.Error()))
	}
	if c.Name == "" {
		return goerr.Wrap(ErrMissingName, "column name is required", goerr.V(ColumnIDKey, c.ID))
	}
	return nil
}

// Workspace is a tenant served by this deployment
type Workspace struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the BoardFile is valid. Transition targets and the
// initial column are checked when the model.Board is built.
func (b *BoardFile) Validate() error {
	seen := make(map[string]bool)
	for i, col := range b.Columns {
		if err := col.Validate(); err != nil {
			return goerr.Wrap(err, "invalid column", goerr.V(ColumnIndexKey, i))
		}
		if seen[col.ID] {
			return goerr.Wrap(ErrDuplicateColumnID, "duplicate column ID", goerr.V(ColumnIDKey, col.ID))
		}
		seen[col.ID] = true
	}

	workspaces := make(map[string]bool)
	for _, ws := range b.Workspaces {
		if ws.ID == "" {
			return goerr.Wrap(ErrInvalidConfig, "workspace ID is required")
		}
		if workspaces[ws.ID] {
			return goerr.Wrap(ErrDuplicateWorkspace, "duplicate workspace ID", goerr.V(WorkspaceIDKey, ws.ID))
		}
		workspaces[ws.ID] = true
	}

	if b.Board.SortSpacing < 0 {
		return goerr.Wrap(ErrInvalidConfig, "sort_spacing must be positive", goerr.V("sort_spacing", b.Board.SortSpacing))
	}
	return nil
}

// ToBoard builds the domain board. An empty column list yields the default board.
func (b *BoardFile) ToBoard() (*model.Board, error) {
	if len(b.Columns) == 0 {
		if b.Board.Initial == "" && b.Board.SortSpacing == 0 {
			return model.DefaultBoard(), nil
		}
		b.Columns = defaultColumns()
	}

	columns := make([]model.Column, len(b.Columns))
	for i, col := range b.Columns {
		transitions := make([]types.ActionStatus, len(col.Transitions))
		for j, to := range col.Transitions {
			transitions[j] = types.ActionStatus(to)
		}
		columns[i] = model.Column{
			ID:          types.ActionStatus(col.ID),
			Name:        col.Name,
			Transitions: transitions,
		}
	}

	var opts []model.BoardOption
	if b.Board.Initial != "" {
		opts = append(opts, model.WithInitialColumn(types.ActionStatus(b.Board.Initial)))
	}
	if b.Board.SortSpacing != 0 {
		opts = append(opts, model.WithSortSpacing(b.Board.SortSpacing))
	}

	board, err := model.NewBoard(columns, opts...)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid board")
	}
	return board, nil
}

func defaultColumns() []Column {
	board := model.DefaultBoard()
	var columns []Column
	for _, col := range board.Columns() {
		columns = append(columns, Column{ID: col.ID.String(), Name: col.Name})
	}
	return columns
}

// ToRegistry builds the workspace registry. Without declared workspaces every
// workspace ID is served with the board.
func (b *BoardFile) ToRegistry() (*model.WorkspaceRegistry, error) {
	board, err := b.ToBoard()
	if err != nil {
		return nil, err
	}

	if len(b.Workspaces) == 0 {
		return model.NewWorkspaceRegistry(model.WithFallbackBoard(board)), nil
	}

	registry := model.NewWorkspaceRegistry()
	for _, ws := range b.Workspaces {
		name := ws.Name
		if name == "" {
			name = ws.ID
		}
		registry.Register(&model.WorkspaceEntry{
			Workspace: model.Workspace{ID: ws.ID, Name: name},
			Board:     board,
		})
	}
	return registry, nil
}

// LoadBoardFile loads the board configuration from a TOML file
func LoadBoardFile(path string) (*BoardFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "board config not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var file BoardFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}

// Board holds the CLI flag pointing at the board configuration
type Board struct {
	path string
}

func (x *Board) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Board configuration file (TOML). The default TODO / IN_PROGRESS / DONE board is used when omitted",
			Sources:     cli.EnvVars("ACTIONBOARD_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Configure loads the board configuration and builds the workspace registry
func (x *Board) Configure() (*model.WorkspaceRegistry, error) {
	file := &BoardFile{}
	if x.path != "" {
		loaded, err := LoadBoardFile(x.path)
		if err != nil {
			return nil, err
		}
		file = loaded
	}
	return file.ToRegistry()
}
