package controlplane

import (
	"errors"
	"net/http"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/tasks"
)

// Sentinel errors for control plane operations.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrTaskNotFound   = errors.New("task not found")
)

// httpStatus maps an error to the HTTP status the API reports for it.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, tasks.ErrNotFound), errors.Is(err, ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasks.ErrValidation), errors.Is(err, ErrInvalidRequest),
		errors.Is(err, models.ErrUnknownType), errors.Is(err, models.ErrPayloadMismatch):
		return http.StatusBadRequest
	case errors.Is(err, tasks.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), httpStatus(err))
}
