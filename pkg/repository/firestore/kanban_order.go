package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

const kanbanOrdersCollection = "kanban_orders"

type kanbanOrderDoc struct {
	ActionID    string    `firestore:"ActionID"`
	TeamID      string    `firestore:"TeamID"`
	Column      string    `firestore:"Column"`
	Position    int64     `firestore:"Position"`
	SortOrder   int64     `firestore:"SortOrder"`
	LastMovedAt time.Time `firestore:"LastMovedAt"`
}

func toKanbanOrderDoc(o *model.KanbanOrder) *kanbanOrderDoc {
	return &kanbanOrderDoc{
		ActionID:    string(o.ActionID),
		TeamID:      string(o.TeamID),
		Column:      string(o.Column),
		Position:    int64(o.Position),
		SortOrder:   o.SortOrder,
		LastMovedAt: o.LastMovedAt,
	}
}

func fromKanbanOrderDoc(d *kanbanOrderDoc) *model.KanbanOrder {
	return &model.KanbanOrder{
		ActionID:    model.ActionID(d.ActionID),
		TeamID:      types.TeamID(d.TeamID),
		Column:      types.ActionStatus(d.Column),
		Position:    int(d.Position),
		SortOrder:   d.SortOrder,
		LastMovedAt: d.LastMovedAt,
	}
}

type orderRepository struct {
	tx *transaction
}

func (r *orderRepository) ref(workspaceID string, actionID model.ActionID) *firestore.DocumentRef {
	return r.tx.store.collection(workspaceID, kanbanOrdersCollection).Doc(string(actionID))
}

func (r *orderRepository) load(workspaceID string, actionID model.ActionID) (*kanbanOrderDoc, error) {
	ref := r.ref(workspaceID, actionID)
	if doc, found := r.tx.orders.lookup(ref); found {
		return doc, nil
	}

	var doc kanbanOrderDoc
	exists, err := get(r.tx, ref, &doc)
	if err != nil || !exists {
		return nil, err
	}
	return &doc, nil
}

func (r *orderRepository) Get(ctx context.Context, workspaceID string, actionID model.ActionID) (*model.KanbanOrder, error) {
	doc, err := r.load(workspaceID, actionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get kanban order", goerr.V("action_id", actionID))
	}
	if doc == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "kanban order not found", goerr.V("action_id", actionID))
	}
	return fromKanbanOrderDoc(doc), nil
}

func (r *orderRepository) Put(ctx context.Context, workspaceID string, order *model.KanbanOrder) error {
	r.tx.orders.put(r.ref(workspaceID, order.ActionID), toKanbanOrderDoc(order))
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, workspaceID string, actionID model.ActionID) error {
	doc, err := r.load(workspaceID, actionID)
	if err != nil {
		return goerr.Wrap(err, "failed to check kanban order existence", goerr.V("action_id", actionID))
	}
	if doc == nil {
		return goerr.Wrap(interfaces.ErrNotFound, "kanban order not found", goerr.V("action_id", actionID))
	}

	r.tx.orders.remove(r.ref(workspaceID, actionID))
	return nil
}

func (r *orderRepository) ListByColumn(ctx context.Context, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error) {
	q := r.tx.store.collection(workspaceID, kanbanOrdersCollection).
		Where("TeamID", "==", string(teamID)).
		Where("Column", "==", string(column))

	stored, err := query[kanbanOrderDoc](r.tx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list kanban orders",
			goerr.V("team_id", teamID),
			goerr.V("column", column))
	}

	docs := r.tx.orders.merge(stored, func(d *kanbanOrderDoc) bool {
		return d.TeamID == string(teamID) && d.Column == string(column)
	})

	orders := make([]*model.KanbanOrder, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, fromKanbanOrderDoc(doc))
	}
	slices.SortFunc(orders, model.CompareKanbanPosition)
	return orders, nil
}
