package usecase

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
)

// Sentinel errors for use case layer. Callers classify failures with errors.Is.
var (
	// ErrNotFound is the kind of every missing or soft-deleted entity
	ErrNotFound              = errors.New("not found")
	ErrActionNotFound        = fmt.Errorf("action %w", ErrNotFound)
	ErrChecklistItemNotFound = fmt.Errorf("checklist item %w", ErrNotFound)
	ErrWorkspaceNotFound     = fmt.Errorf("workspace %w", ErrNotFound)

	// ErrValidation is returned for malformed input
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when the board does not allow the move
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrConflict is returned when a concurrent mutation was detected. The
	// whole operation may be retried with fresh state.
	ErrConflict = errors.New("conflict")

	// ErrStorage is returned when persistence failed
	ErrStorage = errors.New("storage failure")
)

// Context keys for error values
const (
	WorkspaceIDKey     = "workspace_id"
	TeamIDKey          = "team_id"
	ActionIDKey        = "action_id"
	ChecklistItemIDKey = "checklist_item_id"
	ColumnKey          = "column"
	PositionKey        = "position"
)

// classify makes sure err carries one of the sentinel kinds above. Errors
// already classified pass through; repository conflicts become ErrConflict and
// everything else becomes ErrStorage.
func classify(err error, msg string, options ...goerr.Option) error {
	if err == nil {
		return nil
	}

	for _, kind := range []error{ErrNotFound, ErrValidation, ErrInvalidTransition, ErrConflict, ErrStorage} {
		if errors.Is(err, kind) {
			return err
		}
	}

	if errors.Is(err, interfaces.ErrConflict) {
		return goerr.Wrap(errors.Join(ErrConflict, err), msg, options...)
	}
	return goerr.Wrap(errors.Join(ErrStorage, err), msg, options...)
}

// notFoundAs maps a repository ErrNotFound to kind and leaves other errors to classify
func notFoundAs(err error, kind error, msg string, options ...goerr.Option) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(kind, msg, options...)
	}
	return classify(err, msg, options...)
}

func validationError(msg string, options ...goerr.Option) error {
	return goerr.Wrap(ErrValidation, msg, options...)
}
