package http

import (
	"time"

	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

type actionResponse struct {
	ID            string     `json:"id"`
	TeamID        string     `json:"team_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AssigneeIDs   []string   `json:"assignee_ids"`
	DueDate       *time.Time `json:"due_date"`
	Status        string     `json:"status"`
	IsBlocked     bool       `json:"is_blocked"`
	BlockedReason *string    `json:"blocked_reason"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toActionResponse(a *model.Action) *actionResponse {
	assignees := a.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	return &actionResponse{
		ID:            a.ID.String(),
		TeamID:        a.TeamID.String(),
		Title:         a.Title,
		Description:   a.Description,
		AssigneeIDs:   assignees,
		DueDate:       a.DueDate,
		Status:        a.Status.String(),
		IsBlocked:     a.IsBlocked,
		BlockedReason: a.BlockedReason,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type orderResponse struct {
	Column      string    `json:"column"`
	Position    int       `json:"position"`
	SortOrder   int64     `json:"sort_order"`
	LastMovedAt time.Time `json:"last_moved_at"`
}

func toOrderResponse(o *model.KanbanOrder) *orderResponse {
	if o == nil {
		return nil
	}
	return &orderResponse{
		Column:      o.Column.String(),
		Position:    o.Position,
		SortOrder:   o.SortOrder,
		LastMovedAt: o.LastMovedAt,
	}
}

type checklistItemResponse struct {
	ID          string     `json:"id"`
	ActionID    string     `json:"action_id"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Order       int        `json:"order"`
}

func toChecklistItemResponse(item *model.ChecklistItem) *checklistItemResponse {
	return &checklistItemResponse{
		ID:          item.ID.String(),
		ActionID:    item.ActionID.String(),
		Description: item.Description,
		IsCompleted: item.IsCompleted,
		CompletedAt: item.CompletedAt,
		Order:       item.Order,
	}
}

func toChecklistResponse(items []*model.ChecklistItem) []*checklistItemResponse {
	resp := make([]*checklistItemResponse, len(items))
	for i, item := range items {
		resp[i] = toChecklistItemResponse(item)
	}
	return resp
}

type movementResponse struct {
	ID         string    `json:"id"`
	ActionID   string    `json:"action_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMovementResponse(m *model.ActionMovement) *movementResponse {
	if m == nil {
		return nil
	}
	return &movementResponse{
		ID:         m.ID.String(),
		ActionID:   m.ActionID.String(),
		FromStatus: m.FromStatus.String(),
		ToStatus:   m.ToStatus.String(),
		ActorID:    m.ActorID,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
	}
}

type actionDetailResponse struct {
	Action    *actionResponse          `json:"action"`
	Order     *orderResponse           `json:"order"`
	Checklist []*checklistItemResponse `json:"checklist"`
}

func toActionDetailResponse(d *usecase.ActionDetail) *actionDetailResponse {
	return &actionDetailResponse{
		Action:    toActionResponse(d.Action),
		Order:     toOrderResponse(d.Order),
		Checklist: toChecklistResponse(d.Checklist),
	}
}

type moveResponse struct {
	Action   *actionResponse   `json:"action"`
	Order    *orderResponse    `json:"order"`
	Movement *movementResponse `json:"movement"`
	NoOp     bool              `json:"no_op"`
}

type historyResponse struct {
	Movements  []*movementResponse `json:"movements"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

type cardResponse struct {
	Action *actionResponse `json:"action"`
	Order  *orderResponse  `json:"order"`
}

type columnResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Cards []*cardResponse `json:"cards"`
}

type boardResponse struct {
	TeamID  string            `json:"team_id"`
	Columns []*columnResponse `json:"columns"`
}

func toBoardResponse(view *usecase.BoardView) *boardResponse {
	resp := &boardResponse{
		TeamID:  view.TeamID.String(),
		Columns: make([]*columnResponse, len(view.Columns)),
	}
	for i, col := range view.Columns {
		cards := make([]*cardResponse, len(col.Cards))
		for j, card := range col.Cards {
			cards[j] = &cardResponse{
				Action: toActionResponse(card.Action),
				Order:  toOrderResponse(card.Order),
			}
		}
		resp.Columns[i] = &columnResponse{
			ID:    col.Column.ID.String(),
			Name:  col.Column.Name,
			Cards: cards,
		}
	}
	return resp
}
