package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Action.ListBoard(r.Context(), chi.URLParam(r, "workspaceID"), types.TeamID(chi.URLParam(r, "teamID")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toBoardResponse(view))
}

func (s *Server) reindexColumn(w http.ResponseWriter, r *http.Request) {
	rows, err := s.uc.Action.ReindexBoard(r.Context(),
		chi.URLParam(r, "workspaceID"),
		types.TeamID(chi.URLParam(r, "teamID")),
		types.ActionStatus(chi.URLParam(r, "column")))
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]*orderResponse, len(rows))
	for i, row := range rows {
		resp[i] = toOrderResponse(row)
	}
	writeJSON(w, r, http.StatusOK, resp)
}
