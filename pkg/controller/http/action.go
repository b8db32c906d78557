package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
	"github.com/secmon-lab/actionboard/pkg/usecase"
)

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "invalid request body", goerr.V("error", err.Error()))
	}
	return nil
}

func actionIDParam(r *http.Request) model.ActionID {
	return model.ActionID(chi.URLParam(r, "actionID"))
}

type createActionRequest struct {
	TeamID      string     `json:"team_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeIDs []string   `json:"assignee_ids"`
	DueDate     *time.Time `json:"due_date"`
	Column      string     `json:"column"`
	Position    *int       `json:"position"`
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	var req createActionRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	detail, err := s.uc.Action.CreateAction(r.Context(), chi.URLParam(r, "workspaceID"), usecase.CreateActionInput{
		TeamID:      types.TeamID(req.TeamID),
		Title:       req.Title,
		Description: req.Description,
		AssigneeIDs: req.AssigneeIDs,
		DueDate:     req.DueDate,
		Column:      types.ActionStatus(req.Column),
		Position:    req.Position,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toActionDetailResponse(detail))
}

func (s *Server) getAction(w http.ResponseWriter, r *http.Request) {
	detail, err := s.uc.Action.GetAction(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toActionDetailResponse(detail))
}

type updateActionRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	AssigneeIDs  []string   `json:"assignee_ids"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

func (s *Server) updateAction(w http.ResponseWriter, r *http.Request) {
	var req updateActionRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	action, err := s.uc.Action.UpdateAction(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r), usecase.UpdateActionInput{
		Title:        req.Title,
		Description:  req.Description,
		AssigneeIDs:  req.AssigneeIDs,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toActionResponse(action))
}

func (s *Server) deleteAction(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Action.DeleteAction(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveActionRequest struct {
	Column   string `json:"column"`
	Position int    `json:"position"`
	Notes    string `json:"notes"`
}

func (s *Server) moveAction(w http.ResponseWriter, r *http.Request) {
	var req moveActionRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	// The actor comes from the request context
	result, err := s.uc.Action.MoveAction(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r),
		types.ActionStatus(req.Column), req.Position, "", req.Notes)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, &moveResponse{
		Action:   toActionResponse(result.Action),
		Order:    toOrderResponse(result.Order),
		Movement: toMovementResponse(result.Movement),
		NoOp:     result.NoOp,
	})
}

type blockActionRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) blockAction(w http.ResponseWriter, r *http.Request) {
	var req blockActionRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	action, err := s.uc.Action.BlockAction(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r), req.Reason)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toActionResponse(action))
}

func (s *Server) unblockAction(w http.ResponseWriter, r *http.Request) {
	action, err := s.uc.Action.UnblockAction(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toActionResponse(action))
}

func (s *Server) listMovements(w http.ResponseWriter, r *http.Request) {
	query := usecase.HistoryQuery{Cursor: r.URL.Query().Get("cursor")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			handleError(w, r, goerr.Wrap(usecase.ErrValidation, "limit must be an integer", goerr.V("limit", v)))
			return
		}
		query.Limit = limit
	}

	page, err := s.uc.Movement.History(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r), query)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := &historyResponse{
		Movements:  make([]*movementResponse, len(page.Movements)),
		NextCursor: page.NextCursor,
	}
	for i, m := range page.Movements {
		resp.Movements[i] = toMovementResponse(m)
	}
	writeJSON(w, r, http.StatusOK, resp)
}
