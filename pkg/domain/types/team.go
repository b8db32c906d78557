package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// TeamID identifies a team within a workspace. Each team owns one board.
type TeamID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the TeamID is valid
func (t TeamID) Validate() error {
	if t == "" {
		return goerr.New("team ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("team ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TeamID
func (t TeamID) String() string {
	return string(t)
}
