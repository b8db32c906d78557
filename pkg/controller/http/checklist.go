package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

type addChecklistItemRequest struct {
	Description string `json:"description"`
	Order       *int   `json:"order"`
}

func (s *Server) addChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req addChecklistItemRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.uc.Checklist.AddItem(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r), req.Description, req.Order)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toChecklistItemResponse(item))
}

type reorderChecklistRequest struct {
	ItemIDs []string `json:"item_ids"`
}

func (s *Server) reorderChecklist(w http.ResponseWriter, r *http.Request) {
	var req reorderChecklistRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	ids := make([]model.ChecklistItemID, len(req.ItemIDs))
	for i, id := range req.ItemIDs {
		ids[i] = model.ChecklistItemID(id)
	}

	items, err := s.uc.Checklist.ReorderItems(r.Context(), chi.URLParam(r, "workspaceID"), actionIDParam(r), ids)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toChecklistResponse(items))
}

func (s *Server) toggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.uc.Checklist.ToggleItem(r.Context(), chi.URLParam(r, "workspaceID"), model.ChecklistItemID(chi.URLParam(r, "itemID")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toChecklistItemResponse(item))
}

func (s *Server) deleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Checklist.DeleteItem(r.Context(), chi.URLParam(r, "workspaceID"), model.ChecklistItemID(chi.URLParam(r, "itemID"))); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
