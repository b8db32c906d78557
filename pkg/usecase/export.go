package usecase

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

// DefaultExportPageSize is the number of movements read per transaction
const DefaultExportPageSize = 200

// ExportUseCase streams the movement ledger of a workspace
type ExportUseCase struct {
	repo     interfaces.Repository
	pageSize int
}

type ExportOption func(*ExportUseCase)

// WithExportPageSize sets how many movements are read per transaction
func WithExportPageSize(size int) ExportOption {
	return func(uc *ExportUseCase) {
		if size > 0 {
			uc.pageSize = size
		}
	}
}

func NewExportUseCase(repo interfaces.Repository, opts ...ExportOption) *ExportUseCase {
	uc := &ExportUseCase{repo: repo, pageSize: DefaultExportPageSize}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// movementRecord is the JSON line written for each movement
type movementRecord struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	ActionID    string    `json:"action_id"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	ActorID     string    `json:"actor_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportMovements writes every movement of the workspace to w as JSON lines,
// newest first, and returns the number written
func (uc *ExportUseCase) ExportMovements(ctx context.Context, workspaceID string, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	var (
		cursor *model.MovementCursor
		total  int
	)

	for {
		var page []*model.ActionMovement
		err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
			list, err := tx.Movement().ListByWorkspace(ctx, workspaceID, model.MovementQuery{
				Limit: uc.pageSize,
				After: cursor,
			})
			if err != nil {
				return classify(err, "failed to list movements", goerr.V(WorkspaceIDKey, workspaceID))
			}
			page = list
			return nil
		})
		if err != nil {
			return total, err
		}

		for _, m := range page {
			if err := enc.Encode(movementRecord{
				ID:          string(m.ID),
				WorkspaceID: workspaceID,
				ActionID:    string(m.ActionID),
				FromStatus:  string(m.FromStatus),
				ToStatus:    string(m.ToStatus),
				ActorID:     m.ActorID,
				Notes:       m.Notes,
				CreatedAt:   m.CreatedAt,
			}); err != nil {
				return total, goerr.Wrap(err, "failed to write movement", goerr.V("movement_id", m.ID))
			}
			total++
		}

		if len(page) < uc.pageSize {
			return total, nil
		}
		cursor = model.CursorOf(page[len(page)-1])
	}
}
