package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/errutil"
)

// statusOf maps use case error kinds to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
