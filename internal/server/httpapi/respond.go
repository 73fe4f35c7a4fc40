package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/followhub/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error to its HTTP status.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, "Cannot follow yourself")
	case errors.Is(err, common.ErrAlreadyFollowing):
		writeError(w, http.StatusBadRequest, "Already following user")
	case errors.Is(err, common.ErrActorNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrTargetNotFound):
		writeError(w, http.StatusNotFound, "Target user not found")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrTransientStore):
		s.logger.Warn(r.Context(), "store busy", "op", op, "err", err)
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "Temporarily unavailable, please retry")
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads the response
		s.logger.Info(r.Context(), "request canceled", "op", op)
	default:
		s.logger.Error(r.Context(), "request failed", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
