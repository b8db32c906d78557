package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ActionStatus is the workflow column an action currently sits in.
// The set of usable statuses is declared by the board configuration;
// the constants below are the default board.
type ActionStatus string

const (
	ActionStatusTodo       ActionStatus = "TODO"
	ActionStatusInProgress ActionStatus = "IN_PROGRESS"
	ActionStatusDone       ActionStatus = "DONE"
)

var statusPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// DefaultActionStatuses returns the columns of the default board in display order
func DefaultActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusTodo,
		ActionStatusInProgress,
		ActionStatusDone,
	}
}

// Validate checks the status is well formed. Membership in a board is checked by model.Board.
func (s ActionStatus) Validate() error {
	if s == "" {
		return goerr.New("action status cannot be empty")
	}
	if !statusPattern.MatchString(string(s)) {
		return goerr.New("action status must be upper snake case", goerr.V("status", s))
	}
	return nil
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}
