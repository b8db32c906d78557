package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicateColumnID  = goerr.New("duplicate column ID")
	ErrDuplicateWorkspace = goerr.New("duplicate workspace ID")
	ErrMissingName        = goerr.New("name is required")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	ColumnIDKey    = "column_id"
	ColumnIndexKey = "column_index"
	WorkspaceIDKey = "workspace_id"
)
