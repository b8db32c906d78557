package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the root "workspaces" collection. Used to
// isolate test runs sharing one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) workspacesCollection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_workspaces"
	}
	return "workspaces"
}

// collection returns workspaces/{workspaceID}/{name}
func (f *Firestore) collection(workspaceID, name string) *firestore.CollectionRef {
	return f.client.Collection(f.workspacesCollection()).Doc(workspaceID).Collection(name)
}

// RunTransaction runs fn in a single Firestore transaction attempt. Writes
// made by fn are buffered and committed together after fn returns, so fn may
// freely interleave reads and writes. Contention surfaces as ErrConflict and
// is never retried here.
func (f *Firestore) RunTransaction(ctx context.Context, fn interfaces.TxFunc) error {
	var fnErr error
	err := f.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		tx := newTransaction(f, ftx)
		if err := fn(ctx, tx); err != nil {
			fnErr = err
			return err
		}
		return tx.flush()
	}, firestore.MaxAttempts(1))

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		if isConflict(err) {
			return goerr.Wrap(errors.Join(interfaces.ErrConflict, err), "firestore transaction aborted")
		}
		return goerr.Wrap(err, "firestore transaction failed")
	}
	return nil
}

func isConflict(err error) bool {
	return status.Code(err) == codes.Aborted
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
