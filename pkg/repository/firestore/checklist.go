package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

const checklistItemsCollection = "checklist_items"

type checklistItemDoc struct {
	ID          string     `firestore:"ID"`
	ActionID    string     `firestore:"ActionID"`
	Description string     `firestore:"Description"`
	IsCompleted bool       `firestore:"IsCompleted"`
	CompletedAt *time.Time `firestore:"CompletedAt"`
	Order       int64      `firestore:"Order"`
	CreatedAt   time.Time  `firestore:"CreatedAt"`
	UpdatedAt   time.Time  `firestore:"UpdatedAt"`
}

func toChecklistItemDoc(c *model.ChecklistItem) *checklistItemDoc {
	return &checklistItemDoc{
		ID:          string(c.ID),
		ActionID:    string(c.ActionID),
		Description: c.Description,
		IsCompleted: c.IsCompleted,
		CompletedAt: c.CompletedAt,
		Order:       int64(c.Order),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromChecklistItemDoc(d *checklistItemDoc) *model.ChecklistItem {
	item := &model.ChecklistItem{
		ID:          model.ChecklistItemID(d.ID),
		ActionID:    model.ActionID(d.ActionID),
		Description: d.Description,
		IsCompleted: d.IsCompleted,
		CompletedAt: d.CompletedAt,
		Order:       int(d.Order),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	return item.Copy()
}

type checklistRepository struct {
	tx *transaction
}

func (r *checklistRepository) ref(workspaceID string, id model.ChecklistItemID) *firestore.DocumentRef {
	return r.tx.store.collection(workspaceID, checklistItemsCollection).Doc(string(id))
}

func (r *checklistRepository) load(workspaceID string, id model.ChecklistItemID) (*checklistItemDoc, error) {
	ref := r.ref(workspaceID, id)
	if doc, found := r.tx.items.lookup(ref); found {
		return doc, nil
	}

	var doc checklistItemDoc
	exists, err := get(r.tx, ref, &doc)
	if err != nil || !exists {
		return nil, err
	}
	return &doc, nil
}

func (r *checklistRepository) Create(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error) {
	existing, err := r.load(workspaceID, item.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check checklist item existence", goerr.V("id", item.ID))
	}
	if existing != nil {
		return nil, goerr.New("checklist item already exists", goerr.V("id", item.ID))
	}

	r.tx.items.put(r.ref(workspaceID, item.ID), toChecklistItemDoc(item))
	return item.Copy(), nil
}

func (r *checklistRepository) Get(ctx context.Context, workspaceID string, id model.ChecklistItemID) (*model.ChecklistItem, error) {
	doc, err := r.load(workspaceID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get checklist item", goerr.V("id", id))
	}
	if doc == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", id))
	}
	return fromChecklistItemDoc(doc), nil
}

func (r *checklistRepository) Update(ctx context.Context, workspaceID string, item *model.ChecklistItem) (*model.ChecklistItem, error) {
	existing, err := r.load(workspaceID, item.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check checklist item existence", goerr.V("id", item.ID))
	}
	if existing == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", item.ID))
	}

	doc := toChecklistItemDoc(item)
	doc.CreatedAt = existing.CreatedAt
	r.tx.items.put(r.ref(workspaceID, item.ID), doc)
	return fromChecklistItemDoc(doc), nil
}

func (r *checklistRepository) Delete(ctx context.Context, workspaceID string, id model.ChecklistItemID) error {
	existing, err := r.load(workspaceID, id)
	if err != nil {
		return goerr.Wrap(err, "failed to check checklist item existence", goerr.V("id", id))
	}
	if existing == nil {
		return goerr.Wrap(interfaces.ErrNotFound, "checklist item not found", goerr.V("id", id))
	}

	r.tx.items.remove(r.ref(workspaceID, id))
	return nil
}

func (r *checklistRepository) listDocs(workspaceID string, actionID model.ActionID) ([]*checklistItemDoc, error) {
	q := r.tx.store.collection(workspaceID, checklistItemsCollection).Where("ActionID", "==", string(actionID))
	stored, err := query[checklistItemDoc](r.tx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list checklist items", goerr.V("action_id", actionID))
	}

	return r.tx.items.merge(stored, func(d *checklistItemDoc) bool {
		return d.ActionID == string(actionID)
	}), nil
}

func (r *checklistRepository) ListByAction(ctx context.Context, workspaceID string, actionID model.ActionID) ([]*model.ChecklistItem, error) {
	docs, err := r.listDocs(workspaceID, actionID)
	if err != nil {
		return nil, err
	}

	items := make([]*model.ChecklistItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, fromChecklistItemDoc(doc))
	}
	slices.SortFunc(items, model.CompareChecklistItem)
	return items, nil
}

func (r *checklistRepository) DeleteByAction(ctx context.Context, workspaceID string, actionID model.ActionID) error {
	docs, err := r.listDocs(workspaceID, actionID)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		r.tx.items.remove(r.ref(workspaceID, model.ChecklistItemID(doc.ID)))
	}
	return nil
}
