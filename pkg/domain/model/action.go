package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// ActionID is a unique identifier for an action (UUIDv7, time ordered)
type ActionID string

// NewActionID generates a new ActionID
func NewActionID() ActionID {
	return ActionID(uuid.Must(uuid.NewV7()).String())
}

func (id ActionID) String() string {
	return string(id)
}

// Action represents a unit of work on a team's board
type Action struct {
	ID            ActionID
	TeamID        types.TeamID
	Title         string
	Description   string
	AssigneeIDs   []string
	DueDate       *time.Time
	Status        types.ActionStatus
	IsBlocked     bool
	BlockedReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time // soft-delete marker; deleted actions stay for audit
}

// IsDeleted reports whether the action has been soft-deleted
func (a *Action) IsDeleted() bool {
	return a.DeletedAt != nil
}

// Block marks the action as blocked with the given reason.
// IsBlocked and BlockedReason are always set together.
func (a *Action) Block(reason string) {
	a.IsBlocked = true
	a.BlockedReason = &reason
}

// Unblock clears the blocked flag and its reason
func (a *Action) Unblock() {
	a.IsBlocked = false
	a.BlockedReason = nil
}

// Copy returns a deep copy of the action
func (a *Action) Copy() *Action {
	copied := *a
	copied.AssigneeIDs = make([]string, len(a.AssigneeIDs))
	copy(copied.AssigneeIDs, a.AssigneeIDs)
	if a.DueDate != nil {
		d := *a.DueDate
		copied.DueDate = &d
	}
	if a.BlockedReason != nil {
		r := *a.BlockedReason
		copied.BlockedReason = &r
	}
	if a.DeletedAt != nil {
		d := *a.DeletedAt
		copied.DeletedAt = &d
	}
	return &copied
}
