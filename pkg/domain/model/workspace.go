package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// Workspace represents a tenant (company) identity
type Workspace struct {
	ID   string
	Name string
}

// ErrWorkspaceNotFound is returned when a workspace is not found in the registry
var ErrWorkspaceNotFound = goerr.New("workspace not found")

// WorkspaceEntry holds workspace identity and the board its teams use
type WorkspaceEntry struct {
	Workspace Workspace
	Board     *Board // nil means the registry's fallback board
}

// WorkspaceRegistry holds workspace configurations.
// It does not hold Repository or UseCase instances (settings only).
type WorkspaceRegistry struct {
	entries  map[string]*WorkspaceEntry
	order    []string // preserves registration order
	fallback *Board
}

// RegistryOption configures NewWorkspaceRegistry
type RegistryOption func(*WorkspaceRegistry)

// WithFallbackBoard serves unregistered workspaces with the given board.
// Without it, unregistered workspaces are rejected.
func WithFallbackBoard(b *Board) RegistryOption {
	return func(r *WorkspaceRegistry) {
		r.fallback = b
	}
}

// NewWorkspaceRegistry creates a new empty WorkspaceRegistry
func NewWorkspaceRegistry(opts ...RegistryOption) *WorkspaceRegistry {
	r := &WorkspaceRegistry{
		entries: make(map[string]*WorkspaceEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a workspace entry to the registry
func (r *WorkspaceRegistry) Register(entry *WorkspaceEntry) {
	if _, exists := r.entries[entry.Workspace.ID]; !exists {
		r.order = append(r.order, entry.Workspace.ID)
	}
	r.entries[entry.Workspace.ID] = entry
}

// Get retrieves a workspace entry by ID
func (r *WorkspaceRegistry) Get(workspaceID string) (*WorkspaceEntry, error) {
	entry, ok := r.entries[workspaceID]
	if !ok {
		return nil, goerr.Wrap(ErrWorkspaceNotFound, "workspace not found",
			goerr.V("workspace_id", workspaceID))
	}
	return entry, nil
}

// Board returns the board used by the workspace
func (r *WorkspaceRegistry) Board(workspaceID string) (*Board, error) {
	entry, ok := r.entries[workspaceID]
	switch {
	case ok && entry.Board != nil:
		return entry.Board, nil
	case r.fallback != nil:
		return r.fallback, nil
	case ok:
		return nil, goerr.New("workspace has no board", goerr.V("workspace_id", workspaceID))
	default:
		return nil, goerr.Wrap(ErrWorkspaceNotFound, "workspace not found",
			goerr.V("workspace_id", workspaceID))
	}
}

// List returns all registered workspace entries in registration order
func (r *WorkspaceRegistry) List() []*WorkspaceEntry {
	result := make([]*WorkspaceEntry, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// Workspaces returns all registered workspaces in registration order
func (r *WorkspaceRegistry) Workspaces() []Workspace {
	result := make([]Workspace, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id].Workspace)
	}
	return result
}
