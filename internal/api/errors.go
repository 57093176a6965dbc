package api

import (
	"errors"
	"net/http"

	respond "github.com/murmur-app/murmur/internal/api/respond"
	"github.com/murmur-app/murmur/internal/model"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Missing and corrupt are distinct on purpose: 404 means no bytes exist
// anywhere, 422 means bytes exist but fail format validation.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrInvalidFormat):
		respond.WriteUnprocessable(w, err.Error())
	case errors.Is(err, model.ErrNoAudioCaptured):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrInvalidState):
		respond.WriteConflict(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
