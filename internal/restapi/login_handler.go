package restapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (api *RestAPI) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}

	fieldErrors := make(map[string][]string)
	if req.Username == "" {
		fieldErrors["username"] = append(fieldErrors["username"], "required")
	}
	if req.Password == "" {
		fieldErrors["password"] = append(fieldErrors["password"], "required")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	result, err := api.Auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Metrics.LoginFailures.Inc()
		logging.FromContext(r.Context()).Warn("login rejected", slog.String("username", req.Username))
		api.unauthorizedResponse(w, r, "invalid username or password")
		return
	}
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponseWithClock(models.Login{
		ID:        result.User.ID,
		User:      result.User.DisplayName,
		UserName:  result.User.Username,
		IsAdmin:   result.User.IsAdmin,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}, api.Clock))
}
