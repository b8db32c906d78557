package firestore

import (
	"context"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

const actionsCollection = "actions"

type actionDoc struct {
	ID            string     `firestore:"ID"`
	TeamID        string     `firestore:"TeamID"`
	Title         string     `firestore:"Title"`
	Description   string     `firestore:"Description"`
	AssigneeIDs   []string   `firestore:"AssigneeIDs"`
	DueDate       *time.Time `firestore:"DueDate"`
	Status        string     `firestore:"Status"`
	IsBlocked     bool       `firestore:"IsBlocked"`
	BlockedReason *string    `firestore:"BlockedReason"`
	CreatedAt     time.Time  `firestore:"CreatedAt"`
	UpdatedAt     time.Time  `firestore:"UpdatedAt"`
	DeletedAt     *time.Time `firestore:"DeletedAt"`
}

func toActionDoc(a *model.Action) *actionDoc {
	return &actionDoc{
		ID:            string(a.ID),
		TeamID:        string(a.TeamID),
		Title:         a.Title,
		Description:   a.Description,
		AssigneeIDs:   slices.Clone(a.AssigneeIDs),
		DueDate:       a.DueDate,
		Status:        string(a.Status),
		IsBlocked:     a.IsBlocked,
		BlockedReason: a.BlockedReason,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		DeletedAt:     a.DeletedAt,
	}
}

func fromActionDoc(d *actionDoc) *model.Action {
	a := &model.Action{
		ID:            model.ActionID(d.ID),
		TeamID:        types.TeamID(d.TeamID),
		Title:         d.Title,
		Description:   d.Description,
		AssigneeIDs:   slices.Clone(d.AssigneeIDs),
		DueDate:       d.DueDate,
		Status:        types.ActionStatus(d.Status),
		IsBlocked:     d.IsBlocked,
		BlockedReason: d.BlockedReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		DeletedAt:     d.DeletedAt,
	}
	if a.AssigneeIDs == nil {
		a.AssigneeIDs = []string{}
	}
	return a.Copy()
}

type actionRepository struct {
	tx *transaction
}

func (r *actionRepository) ref(workspaceID string, id model.ActionID) *firestore.DocumentRef {
	return r.tx.store.collection(workspaceID, actionsCollection).Doc(string(id))
}

func (r *actionRepository) load(workspaceID string, id model.ActionID) (*actionDoc, error) {
	ref := r.ref(workspaceID, id)
	if doc, found := r.tx.actions.lookup(ref); found {
		return doc, nil
	}

	var doc actionDoc
	exists, err := get(r.tx, ref, &doc)
	if err != nil || !exists {
		return nil, err
	}
	return &doc, nil
}

func (r *actionRepository) Create(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error) {
	existing, err := r.load(workspaceID, action.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check action existence", goerr.V("id", action.ID))
	}
	if existing != nil {
		return nil, goerr.New("action already exists", goerr.V("id", action.ID))
	}

	r.tx.actions.put(r.ref(workspaceID, action.ID), toActionDoc(action))
	return action.Copy(), nil
}

func (r *actionRepository) Get(ctx context.Context, workspaceID string, id model.ActionID) (*model.Action, error) {
	doc, err := r.load(workspaceID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("id", id))
	}
	if doc == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", id))
	}
	return fromActionDoc(doc), nil
}

func (r *actionRepository) Update(ctx context.Context, workspaceID string, action *model.Action) (*model.Action, error) {
	existing, err := r.load(workspaceID, action.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check action existence", goerr.V("id", action.ID))
	}
	if existing == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	doc := toActionDoc(action)
	doc.CreatedAt = existing.CreatedAt
	r.tx.actions.put(r.ref(workspaceID, action.ID), doc)
	return fromActionDoc(doc), nil
}

func (r *actionRepository) ListByTeam(ctx context.Context, workspaceID string, teamID types.TeamID) ([]*model.Action, error) {
	q := r.tx.store.collection(workspaceID, actionsCollection).Where("TeamID", "==", string(teamID))
	stored, err := query[actionDoc](r.tx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions", goerr.V("team_id", teamID))
	}

	docs := r.tx.actions.merge(stored, func(d *actionDoc) bool {
		return d.TeamID == string(teamID)
	})

	actions := make([]*model.Action, 0, len(docs))
	for _, doc := range docs {
		if doc.DeletedAt != nil {
			continue
		}
		actions = append(actions, fromActionDoc(doc))
	}

	slices.SortFunc(actions, func(a, b *model.Action) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return actions, nil
}
