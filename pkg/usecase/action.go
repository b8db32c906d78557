package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/utils/async"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
)

// ActionUseCase is the single entry point for operations that change an
// action's existence or workflow state
type ActionUseCase struct {
	repo     interfaces.Repository
	registry *model.WorkspaceRegistry
	engine   *OrderingEngine
	recorder *MovementRecorder
	notifier movementNotifier
	clock    func() time.Time
}

func NewActionUseCase(repo interfaces.Repository, registry *model.WorkspaceRegistry, engine *OrderingEngine, recorder *MovementRecorder, notifier movementNotifier, clock func() time.Time) *ActionUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ActionUseCase{
		repo:     repo,
		registry: registry,
		engine:   engine,
		recorder: recorder,
		notifier: notifier,
		clock:    clock,
	}
}

type CreateActionInput struct {
	TeamID      types.TeamID
	Title       string
	Description string
	AssigneeIDs []string
	DueDate     *time.Time

	// Column defaults to the board's initial column
	Column types.ActionStatus
	// Position inserts the action at that rank of the column (clamped).
	// nil appends at the end.
	Position *int
}

// UpdateActionInput holds a partial update. nil fields are left unchanged.
type UpdateActionInput struct {
	Title        *string
	Description  *string
	AssigneeIDs  []string
	DueDate      *time.Time
	ClearDueDate bool
}

// ActionDetail is an action with its board placement and checklist
type ActionDetail struct {
	Action    *model.Action
	Order     *model.KanbanOrder
	Checklist []*model.ChecklistItem
}

// MoveResult is the outcome of MoveAction. Movement is nil when the status did
// not change. NoOp is set when nothing was written.
type MoveResult struct {
	Action   *model.Action
	Order    *model.KanbanOrder
	Movement *model.ActionMovement
	NoOp     bool
}

// BoardCard is one action placed on a board
type BoardCard struct {
	Action *model.Action
	Order  *model.KanbanOrder
}

// BoardColumn lists the cards of one column in position order
type BoardColumn struct {
	Column model.Column
	Cards  []*BoardCard
}

// BoardView is a team board with columns in declared order
type BoardView struct {
	TeamID  types.TeamID
	Columns []*BoardColumn
}

func (uc *ActionUseCase) board(workspaceID string) (*model.Board, error) {
	board, err := uc.registry.Board(workspaceID)
	if err != nil {
		return nil, goerr.Wrap(ErrWorkspaceNotFound, "workspace not found", goerr.V(WorkspaceIDKey, workspaceID))
	}
	return board, nil
}

// getLive loads a non-deleted action
func getLive(ctx context.Context, tx interfaces.Transaction, workspaceID string, id model.ActionID) (*model.Action, error) {
	action, err := tx.Action().Get(ctx, workspaceID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrActionNotFound, "action not found", goerr.V(ActionIDKey, id))
	}
	if action.IsDeleted() {
		return nil, goerr.Wrap(ErrActionNotFound, "action is deleted", goerr.V(ActionIDKey, id))
	}
	return action, nil
}

func (uc *ActionUseCase) CreateAction(ctx context.Context, workspaceID string, input CreateActionInput) (*ActionDetail, error) {
	board, err := uc.board(workspaceID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("action title is required")
	}
	if err := input.TeamID.Validate(); err != nil {
		return nil, validationError("invalid team ID", goerr.V(TeamIDKey, input.TeamID), goerr.V("error", err.Error()))
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, validationError("position must not be negative", goerr.V(PositionKey, *input.Position))
	}

	column := input.Column
	if column == "" {
		column = board.InitialColumn()
	}
	if !board.HasColumn(column) {
		return nil, goerr.Wrap(ErrInvalidTransition, "column is not declared by the board", goerr.V(ColumnKey, column))
	}

	assigneeIDs := input.AssigneeIDs
	if assigneeIDs == nil {
		assigneeIDs = []string{}
	}

	now := uc.clock()
	action := &model.Action{
		ID:          model.NewActionID(),
		TeamID:      input.TeamID,
		Title:       title,
		Description: input.Description,
		AssigneeIDs: slices.Clone(assigneeIDs),
		DueDate:     input.DueDate,
		Status:      column,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var detail *ActionDetail
	err = runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		created, err := tx.Action().Create(ctx, workspaceID, action)
		if err != nil {
			return goerr.Wrap(err, "failed to create action", goerr.V(ActionIDKey, action.ID))
		}

		order, err := uc.engine.Append(ctx, tx, workspaceID, &model.KanbanOrder{
			ActionID: created.ID,
			TeamID:   created.TeamID,
			Column:   column,
		}, input.Position)
		if err != nil {
			return err
		}

		detail = &ActionDetail{Action: created, Order: order, Checklist: []*model.ChecklistItem{}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("action created",
		"workspace_id", workspaceID,
		"action_id", detail.Action.ID,
		"column", detail.Order.Column,
		"position", detail.Order.Position)
	return detail, nil
}

func (uc *ActionUseCase) GetAction(ctx context.Context, workspaceID string, id model.ActionID) (*ActionDetail, error) {
	var detail *ActionDetail
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		action, err := getLive(ctx, tx, workspaceID, id)
		if err != nil {
			return err
		}

		order, err := tx.Order().Get(ctx, workspaceID, id)
		if err != nil {
			return classify(err, "failed to get kanban order", goerr.V(ActionIDKey, id))
		}

		items, err := tx.Checklist().ListByAction(ctx, workspaceID, id)
		if err != nil {
			return classify(err, "failed to list checklist items", goerr.V(ActionIDKey, id))
		}

		detail = &ActionDetail{Action: action, Order: order, Checklist: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateAction applies field-level changes. Status and ordering are never touched.
func (uc *ActionUseCase) UpdateAction(ctx context.Context, workspaceID string, id model.ActionID, input UpdateActionInput) (*model.Action, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, validationError("action title cannot be empty", goerr.V(ActionIDKey, id))
	}

	var updated *model.Action
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		action, err := getLive(ctx, tx, workspaceID, id)
		if err != nil {
			return err
		}

		if input.Title != nil {
			action.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			action.Description = *input.Description
		}
		if input.AssigneeIDs != nil {
			action.AssigneeIDs = slices.Clone(input.AssigneeIDs)
		}
		if input.ClearDueDate {
			action.DueDate = nil
		} else if input.DueDate != nil {
			action.DueDate = input.DueDate
		}
		action.UpdatedAt = uc.clock()

		updated, err = tx.Action().Update(ctx, workspaceID, action)
		if err != nil {
			return goerr.Wrap(err, "failed to update action", goerr.V(ActionIDKey, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MoveAction moves an action to targetPosition of targetColumn. A status
// change records exactly one movement in the same transaction. Moving to the
// current column and (clamped) position is a no-op.
func (uc *ActionUseCase) MoveAction(ctx context.Context, workspaceID string, id model.ActionID, targetColumn types.ActionStatus, targetPosition int, actorID, notes string) (*MoveResult, error) {
	board, err := uc.board(workspaceID)
	if err != nil {
		return nil, err
	}
	if targetPosition < 0 {
		return nil, validationError("position must not be negative",
			goerr.V(ActionIDKey, id),
			goerr.V(PositionKey, targetPosition))
	}
	if actorID == "" {
		actorID = model.ActorFromContext(ctx)
	}

	var result *MoveResult
	err = runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		action, err := getLive(ctx, tx, workspaceID, id)
		if err != nil {
			return err
		}

		if !board.HasColumn(targetColumn) {
			return goerr.Wrap(ErrInvalidTransition, "column is not declared by the board",
				goerr.V(ActionIDKey, id),
				goerr.V(ColumnKey, targetColumn))
		}
		if !board.CanTransition(action.Status, targetColumn) {
			return goerr.Wrap(ErrInvalidTransition, "transition is not allowed",
				goerr.V(ActionIDKey, id),
				goerr.V("from", action.Status),
				goerr.V("to", targetColumn))
		}

		order, err := tx.Order().Get(ctx, workspaceID, id)
		if err != nil {
			return classify(err, "failed to get kanban order", goerr.V(ActionIDKey, id))
		}

		if order.Column == targetColumn {
			rows, err := tx.Order().ListByColumn(ctx, workspaceID, order.TeamID, targetColumn)
			if err != nil {
				return classify(err, "failed to list column", goerr.V(ColumnKey, targetColumn))
			}
			if min(targetPosition, len(rows)-1) == order.Position {
				result = &MoveResult{Action: action, Order: order, NoOp: true}
				return nil
			}
		}

		placed, err := uc.engine.Place(ctx, tx, workspaceID, order, targetColumn, targetPosition)
		if err != nil {
			return err
		}
		result = &MoveResult{Action: action, Order: placed}

		if action.Status == targetColumn {
			return nil
		}

		from := action.Status
		action.Status = targetColumn
		action.UpdatedAt = uc.clock()
		updated, err := tx.Action().Update(ctx, workspaceID, action)
		if err != nil {
			return goerr.Wrap(err, "failed to update action status", goerr.V(ActionIDKey, id))
		}
		result.Action = updated

		movement, err := uc.recorder.Record(ctx, tx, workspaceID, id, from, targetColumn, actorID, notes)
		if err != nil {
			return err
		}
		result.Movement = movement
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Movement != nil {
		logging.From(ctx).Info("action moved",
			"workspace_id", workspaceID,
			"action_id", id,
			"from", result.Movement.FromStatus,
			"to", result.Movement.ToStatus,
			"actor_id", actorID)

		action, movement := result.Action.Copy(), result.Movement.Copy()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.NotifyMovement(ctx, workspaceID, action, movement)
		})
	}

	return result, nil
}

// BlockAction sets the blocked flag. Blocking a blocked action replaces the reason.
func (uc *ActionUseCase) BlockAction(ctx context.Context, workspaceID string, id model.ActionID, reason string) (*model.Action, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("block reason is required", goerr.V(ActionIDKey, id))
	}

	var updated *model.Action
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		action, err := getLive(ctx, tx, workspaceID, id)
		if err != nil {
			return err
		}

		action.Block(reason)
		action.UpdatedAt = uc.clock()
		updated, err = tx.Action().Update(ctx, workspaceID, action)
		if err != nil {
			return goerr.Wrap(err, "failed to block action", goerr.V(ActionIDKey, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UnblockAction clears the blocked flag. Unblocking an unblocked action
// returns it unchanged.
func (uc *ActionUseCase) UnblockAction(ctx context.Context, workspaceID string, id model.ActionID) (*model.Action, error) {
	var updated *model.Action
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		action, err := getLive(ctx, tx, workspaceID, id)
		if err != nil {
			return err
		}
		if !action.IsBlocked {
			updated = action
			return nil
		}

		action.Unblock()
		action.UpdatedAt = uc.clock()
		updated, err = tx.Action().Update(ctx, workspaceID, action)
		if err != nil {
			return goerr.Wrap(err, "failed to unblock action", goerr.V(ActionIDKey, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAction soft-deletes an action. Its board placement and checklist are
// removed; its movements are kept.
func (uc *ActionUseCase) DeleteAction(ctx context.Context, workspaceID string, id model.ActionID) error {
	err := runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		action, err := getLive(ctx, tx, workspaceID, id)
		if err != nil {
			return err
		}

		now := uc.clock()
		action.DeletedAt = &now
		action.UpdatedAt = now
		if _, err := tx.Action().Update(ctx, workspaceID, action); err != nil {
			return goerr.Wrap(err, "failed to soft delete action", goerr.V(ActionIDKey, id))
		}

		order, err := tx.Order().Get(ctx, workspaceID, id)
		if err != nil {
			return classify(err, "failed to get kanban order", goerr.V(ActionIDKey, id))
		}
		if err := uc.engine.Remove(ctx, tx, workspaceID, order); err != nil {
			return err
		}

		if err := tx.Checklist().DeleteByAction(ctx, workspaceID, id); err != nil {
			return goerr.Wrap(err, "failed to delete checklist items", goerr.V(ActionIDKey, id))
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.From(ctx).Info("action deleted", "workspace_id", workspaceID, "action_id", id)
	return nil
}

// ListBoard returns the team board with every non-deleted action
func (uc *ActionUseCase) ListBoard(ctx context.Context, workspaceID string, teamID types.TeamID) (*BoardView, error) {
	board, err := uc.board(workspaceID)
	if err != nil {
		return nil, err
	}
	if err := teamID.Validate(); err != nil {
		return nil, validationError("invalid team ID", goerr.V(TeamIDKey, teamID), goerr.V("error", err.Error()))
	}

	view := &BoardView{TeamID: teamID}
	err = runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		actions, err := tx.Action().ListByTeam(ctx, workspaceID, teamID)
		if err != nil {
			return classify(err, "failed to list actions", goerr.V(TeamIDKey, teamID))
		}
		byID := make(map[model.ActionID]*model.Action, len(actions))
		for _, a := range actions {
			byID[a.ID] = a
		}

		for _, column := range board.Columns() {
			rows, err := tx.Order().ListByColumn(ctx, workspaceID, teamID, column.ID)
			if err != nil {
				return classify(err, "failed to list column", goerr.V(ColumnKey, column.ID))
			}

			col := &BoardColumn{Column: column, Cards: make([]*BoardCard, 0, len(rows))}
			for _, row := range rows {
				if action, ok := byID[row.ActionID]; ok {
					col.Cards = append(col.Cards, &BoardCard{Action: action, Order: row})
				}
			}
			view.Columns = append(view.Columns, col)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ReindexBoard repairs one column of a team board
func (uc *ActionUseCase) ReindexBoard(ctx context.Context, workspaceID string, teamID types.TeamID, column types.ActionStatus) ([]*model.KanbanOrder, error) {
	board, err := uc.board(workspaceID)
	if err != nil {
		return nil, err
	}
	if err := teamID.Validate(); err != nil {
		return nil, validationError("invalid team ID", goerr.V(TeamIDKey, teamID), goerr.V("error", err.Error()))
	}
	if !board.HasColumn(column) {
		return nil, validationError("column is not declared by the board", goerr.V(ColumnKey, column))
	}

	var rows []*model.KanbanOrder
	err = runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		reindexed, err := uc.engine.Reindex(ctx, tx, workspaceID, teamID, column)
		if err != nil {
			return err
		}
		rows = reindexed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CheckBoard inspects every column of a team board without repairing it
func (uc *ActionUseCase) CheckBoard(ctx context.Context, workspaceID string, teamID types.TeamID) ([]ColumnIssue, error) {
	board, err := uc.board(workspaceID)
	if err != nil {
		return nil, err
	}
	if err := teamID.Validate(); err != nil {
		return nil, validationError("invalid team ID", goerr.V(TeamIDKey, teamID), goerr.V("error", err.Error()))
	}

	var issues []ColumnIssue
	err = runTx(ctx, uc.repo, func(ctx context.Context, tx interfaces.Transaction) error {
		issues = nil
		for _, column := range board.Columns() {
			found, err := uc.engine.Inspect(ctx, tx, workspaceID, teamID, column.ID)
			if err != nil {
				return err
			}
			issues = append(issues, found...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}
