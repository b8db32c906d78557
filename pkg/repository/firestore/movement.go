package firestore

import (
	"context"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

const actionMovementsCollection = "action_movements"

type movementDoc struct {
	ID         string    `firestore:"ID"`
	ActionID   string    `firestore:"ActionID"`
	FromStatus string    `firestore:"FromStatus"`
	ToStatus   string    `firestore:"ToStatus"`
	ActorID    string    `firestore:"ActorID"`
	Notes      string    `firestore:"Notes"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
}

func toMovementDoc(m *model.ActionMovement) *movementDoc {
	return &movementDoc{
		ID:         string(m.ID),
		ActionID:   string(m.ActionID),
		FromStatus: string(m.FromStatus),
		ToStatus:   string(m.ToStatus),
		ActorID:    m.ActorID,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
	}
}

func fromMovementDoc(d *movementDoc) *model.ActionMovement {
	return &model.ActionMovement{
		ID:         model.MovementID(d.ID),
		ActionID:   model.ActionID(d.ActionID),
		FromStatus: types.ActionStatus(d.FromStatus),
		ToStatus:   types.ActionStatus(d.ToStatus),
		ActorID:    d.ActorID,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
	}
}

type movementRepository struct {
	tx *transaction
}

func (r *movementRepository) Create(ctx context.Context, workspaceID string, movement *model.ActionMovement) (*model.ActionMovement, error) {
	ref := r.tx.store.collection(workspaceID, actionMovementsCollection).Doc(string(movement.ID))
	r.tx.movements.put(ref, toMovementDoc(movement))
	return movement.Copy(), nil
}

func (r *movementRepository) ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID, q model.MovementQuery) ([]*model.ActionMovement, error) {
	base := r.tx.store.collection(workspaceID, actionMovementsCollection).
		Where("ActionID", "==", string(actionID))

	return r.page(base, q, func(d *movementDoc) bool {
		return d.ActionID == string(actionID)
	})
}

func (r *movementRepository) ListByWorkspace(ctx context.Context, workspaceID string, q model.MovementQuery) ([]*model.ActionMovement, error) {
	base := r.tx.store.collection(workspaceID, actionMovementsCollection).Query
	return r.page(base, q, func(*movementDoc) bool { return true })
}

func (r *movementRepository) page(base firestore.Query, q model.MovementQuery, match func(*movementDoc) bool) ([]*model.ActionMovement, error) {
	fq := base.
		OrderBy("CreatedAt", firestore.Desc).
		OrderBy("ID", firestore.Desc)
	if q.After != nil {
		fq = fq.StartAfter(q.After.CreatedAt, string(q.After.ID))
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	stored, err := query[movementDoc](r.tx, fq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list movements")
	}

	docs := r.tx.movements.merge(stored, match)
	movements := make([]*model.ActionMovement, 0, len(docs))
	for _, doc := range docs {
		m := fromMovementDoc(doc)
		if q.After.After(m) {
			movements = append(movements, m)
		}
	}

	slices.SortFunc(movements, func(a, b *model.ActionMovement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(b.ID), string(a.ID))
	})
	if q.Limit > 0 && len(movements) > q.Limit {
		movements = movements[:q.Limit]
	}
	return movements, nil
}
