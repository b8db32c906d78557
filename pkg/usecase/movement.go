package usecase

import (
	"context"
	"iter"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

const (
	// DefaultHistoryLimit is the page size used when HistoryQuery.Limit is zero
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps HistoryQuery.Limit
	MaxHistoryLimit = 500
)

// MovementRecorder is the append-only audit trail of status changes
type MovementRecorder struct {
	repo  interfaces.Repository
	clock func() time.Time
}

func NewMovementRecorder(repo interfaces.Repository, clock func() time.Time) *MovementRecorder {
	return &MovementRecorder{repo: repo, clock: clock}
}

// Record appends one movement in the caller's transaction
func (r *MovementRecorder) Record(ctx context.Context, tx interfaces.Transaction, workspaceID string, actionID model.ActionID, from, to types.ActionStatus, actorID, notes string) (*model.ActionMovement, error) {
	movement := &model.ActionMovement{
		ID:         model.NewMovementID(),
		ActionID:   actionID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Notes:      notes,
		CreatedAt:  r.clock(),
	}

	created, err := tx.Movement().Create(ctx, workspaceID, movement)
	if err != nil {
		return nil, classify(err, "failed to record movement",
			goerr.V(ActionIDKey, actionID),
			goerr.V("from", from),
			goerr.V("to", to))
	}
	return created, nil
}

// HistoryQuery selects one page of history. Cursor is the NextCursor of the
// previous page; empty starts from the newest movement.
type HistoryQuery struct {
	Limit  int
	Cursor string
}

// HistoryPage is one page of movements, newest first. NextCursor is empty on
// the last page.
type HistoryPage struct {
	Movements  []*model.ActionMovement
	NextCursor string
}

// History returns one page of an action's movements. Soft-deleted actions
// keep their history.
func (r *MovementRecorder) History(ctx context.Context, workspaceID string, actionID model.ActionID, query HistoryQuery) (*HistoryPage, error) {
	limit := query.Limit
	switch {
	case limit < 0:
		return nil, validationError("history limit must not be negative", goerr.V("limit", limit))
	case limit == 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	cursor, err := model.DecodeMovementCursor(query.Cursor)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid history cursor", goerr.V("cursor", query.Cursor), goerr.V("error", err.Error()))
	}

	var movements []*model.ActionMovement
	err = runTx(ctx, r.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		if _, err := tx.Action().Get(ctx, workspaceID, actionID); err != nil {
			return notFoundAs(err, ErrActionNotFound, "action not found", goerr.V(ActionIDKey, actionID))
		}

		// One extra row tells whether another page exists.
		list, err := tx.Movement().ListByAction(ctx, workspaceID, actionID, model.MovementQuery{
			Limit: limit + 1,
			After: cursor,
		})
		if err != nil {
			return classify(err, "failed to list movements", goerr.V(ActionIDKey, actionID))
		}
		movements = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	page := &HistoryPage{Movements: movements}
	if len(movements) > limit {
		page.Movements = movements[:limit]
		page.NextCursor = model.CursorOf(page.Movements[limit-1]).Encode()
	}
	return page, nil
}

// HistorySeq iterates over the full history of an action, newest first,
// fetching pageSize movements at a time. Each range over the sequence starts
// again from the newest movement. Iteration stops at the first error.
func (r *MovementRecorder) HistorySeq(ctx context.Context, workspaceID string, actionID model.ActionID, pageSize int) iter.Seq2[*model.ActionMovement, error] {
	return func(yield func(*model.ActionMovement, error) bool) {
		cursor := ""
		for {
			page, err := r.History(ctx, workspaceID, actionID, HistoryQuery{Limit: pageSize, Cursor: cursor})
			if err != nil {
				yield(nil, err)
				return
			}

			for _, m := range page.Movements {
				if !yield(m, nil) {
					return
				}
			}

			if page.NextCursor == "" {
				return
			}
			cursor = page.NextCursor
		}
	}
}
