package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"qualcode/internal/config"
	"qualcode/internal/domain"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"

	"github.com/google/uuid"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		extras := map[string]any{}
		if conflictErr.ResourceType != "" {
			extras["resource_type"] = conflictErr.ResourceType
		}
		if conflictErr.ResourceID != "" {
			extras["resource_id"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), extras)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// actor builds the caller identity set by the auth middleware.
// An empty user id means the route was reached without authentication.
func actor(w http.ResponseWriter, r *http.Request) (codingSvc.Actor, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return codingSvc.Actor{}, false
	}
	return codingSvc.Actor{UserID: userID, Email: httputil.GetEmail(r)}, true
}

// pathID reads a UUID path parameter. Malformed ids are answered with 400
// here so they never reach the database as a cast error.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return id, true
}

// parseBody decodes the JSON body, answering 400 on failure.
func parseBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest, config.MaxRequestBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// bodyIDs checks that every id taken from a request body is a UUID, answering 400 otherwise
func bodyIDs(w http.ResponseWriter, field string, ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid "+field)
			return false
		}
	}
	return true
}
