package restapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/canvass"
	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/models"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/rolldb"
)

// retryAfterSeconds is advertised when the connection pool is exhausted.
const retryAfterSeconds = "5"

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	w.Header().Set("Content-Type", "application/json")
	status := response.Code
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err,
			slog.String("path", r.URL.Path))
	}
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, text string) {
	api.sendResponse(w, r, models.NewResponseWithClock(code, nil, text, api.Clock))
}

func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	api.sendResponse(w, r, models.NewResponseWithClock(http.StatusBadRequest, map[string]interface{}{
		"fieldErrors": fieldErrors,
	}, "validation error", api.Clock))
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendError(w, r, http.StatusBadRequest, text)
}

func (api *RestAPI) unauthorizedResponse(w http.ResponseWriter, r *http.Request, text string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="voterroll"`)
	api.sendError(w, r, http.StatusUnauthorized, text)
}

func (api *RestAPI) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusForbidden, "admin access required")
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendError(w, r, http.StatusNotFound, text)
}

func (api *RestAPI) conflictResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendError(w, r, http.StatusConflict, text)
}

func (api *RestAPI) storageUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "storage unavailable", err,
		slog.String("path", r.URL.Path))
	w.Header().Set("Retry-After", retryAfterSeconds)
	api.sendError(w, r, http.StatusServiceUnavailable, "storage temporarily unavailable, retry later")
}

// serverErrorResponse logs err and answers with a generic message.
func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}

// errorResponse maps a service error to its HTTP status.
func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rolldb.ErrStorageUnavailable):
		api.storageUnavailableResponse(w, r, err)
	case errors.Is(err, canvass.ErrAlreadyVisited):
		api.conflictResponse(w, r, "voter already visited")
	case errors.Is(err, canvass.ErrForbidden):
		api.forbiddenResponse(w, r)
	case errors.Is(err, canvass.ErrNotVisited):
		api.notFoundResponse(w, r, "voter has not been visited")
	case errors.Is(err, canvass.ErrVoterNotFound):
		api.notFoundResponse(w, r, "voter not found")
	case errors.Is(err, auth.ErrUserNotFound):
		api.notFoundResponse(w, r, "user not found")
	case errors.Is(err, auth.ErrUsernameTaken):
		api.conflictResponse(w, r, "username already taken")
	case errors.Is(err, search.ErrQueryTooLong):
		api.validationErrorResponse(w, r, map[string][]string{"search": {err.Error()}})
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrMissingUsername):
		api.badRequestResponse(w, r, err.Error())
	default:
		api.serverErrorResponse(w, r, err)
	}
}
