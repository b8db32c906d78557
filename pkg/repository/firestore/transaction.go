package firestore

import (
	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
)

// pending is a buffered write. A nil doc marks a deletion.
type pending[D any] struct {
	ref *firestore.DocumentRef
	doc *D
}

// overlay holds the writes of one transaction for one collection kind, in
// the order they were made.
type overlay[D any] struct {
	entries map[string]*pending[D]
	keys    []string
}

func newOverlay[D any]() *overlay[D] {
	return &overlay[D]{entries: make(map[string]*pending[D])}
}

func (o *overlay[D]) put(ref *firestore.DocumentRef, doc *D) {
	if _, exists := o.entries[ref.Path]; !exists {
		o.keys = append(o.keys, ref.Path)
	}
	o.entries[ref.Path] = &pending[D]{ref: ref, doc: doc}
}

func (o *overlay[D]) remove(ref *firestore.DocumentRef) {
	o.put(ref, nil)
}

// lookup returns the buffered state of ref. found is false when ref has not
// been written in this transaction.
func (o *overlay[D]) lookup(ref *firestore.DocumentRef) (doc *D, found bool) {
	p, exists := o.entries[ref.Path]
	if !exists {
		return nil, false
	}
	return p.doc, true
}

// merge applies buffered writes to docs read from the store. Documents
// created in this transaction are included when match accepts them.
func (o *overlay[D]) merge(stored map[string]*D, match func(*D) bool) []*D {
	for path, p := range o.entries {
		if p.doc == nil {
			delete(stored, path)
			continue
		}
		if match(p.doc) {
			stored[path] = p.doc
		} else {
			delete(stored, path)
		}
	}

	merged := make([]*D, 0, len(stored))
	for _, doc := range stored {
		merged = append(merged, doc)
	}
	return merged
}

func (o *overlay[D]) flush(tx *firestore.Transaction) error {
	for _, key := range o.keys {
		p := o.entries[key]
		if p.doc == nil {
			if err := tx.Delete(p.ref); err != nil {
				return goerr.Wrap(err, "failed to buffer delete", goerr.V("path", key))
			}
			continue
		}
		if err := tx.Set(p.ref, p.doc); err != nil {
			return goerr.Wrap(err, "failed to buffer write", goerr.V("path", key))
		}
	}
	return nil
}

type transaction struct {
	store *Firestore
	tx    *firestore.Transaction

	actions   *overlay[actionDoc]
	orders    *overlay[kanbanOrderDoc]
	items     *overlay[checklistItemDoc]
	movements *overlay[movementDoc]
}

func newTransaction(store *Firestore, tx *firestore.Transaction) *transaction {
	return &transaction{
		store:     store,
		tx:        tx,
		actions:   newOverlay[actionDoc](),
		orders:    newOverlay[kanbanOrderDoc](),
		items:     newOverlay[checklistItemDoc](),
		movements: newOverlay[movementDoc](),
	}
}

func (t *transaction) flush() error {
	if err := t.actions.flush(t.tx); err != nil {
		return err
	}
	if err := t.orders.flush(t.tx); err != nil {
		return err
	}
	if err := t.items.flush(t.tx); err != nil {
		return err
	}
	return t.movements.flush(t.tx)
}

func (t *transaction) Action() interfaces.ActionRepository {
	return &actionRepository{tx: t}
}

func (t *transaction) Order() interfaces.OrderRepository {
	return &orderRepository{tx: t}
}

func (t *transaction) Checklist() interfaces.ChecklistRepository {
	return &checklistRepository{tx: t}
}

func (t *transaction) Movement() interfaces.MovementRepository {
	return &movementRepository{tx: t}
}

// get reads ref through the transaction into dst. It reports false when the
// document does not exist.
func get[D any](t *transaction, ref *firestore.DocumentRef, dst *D) (bool, error) {
	snap, err := t.tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get document", goerr.V("path", ref.Path))
	}
	if err := snap.DataTo(dst); err != nil {
		return false, goerr.Wrap(err, "failed to decode document", goerr.V("path", ref.Path))
	}
	return true, nil
}

// query runs q through the transaction and decodes every result keyed by
// document path.
func query[D any](t *transaction, q firestore.Query) (map[string]*D, error) {
	iter := t.tx.Documents(q)
	defer iter.Stop()

	docs := make(map[string]*D)
	for {
		snap, err := iter.Next()
		if isDone(err) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		var d D
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("doc_id", snap.Ref.ID))
		}
		docs[snap.Ref.Path] = &d
	}
	return docs, nil
}
