package restapi

import (
	"net/http"

	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/models"
	"github.com/canvasstrack/voterroll/internal/utils"
)

type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"isAdmin"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (api *RestAPI) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := api.Auth.ListUsers(r.Context())
	if err != nil {
		api.adminErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponseWithClock(models.NewUsers(users), api.Clock))
}

func (api *RestAPI) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}

	user, err := api.Auth.CreateUser(r.Context(), auth.NewUser{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewResponseWithClock(http.StatusCreated, map[string]interface{}{
		"entry": models.NewUser(user),
	}, "Created", api.Clock))
}

func (api *RestAPI) setPasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.ExtractIDFromParams(r)

	var req setPasswordRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}

	if err := api.Auth.SetPassword(r.Context(), userID, req.Password); err != nil {
		api.errorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewOKResponseWithClock(struct{}{}, api.Clock))
}

func (api *RestAPI) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.ExtractIDFromParams(r)

	if identity, ok := IdentityFromContext(r.Context()); ok && identity.UserID == userID {
		api.badRequestResponse(w, r, "cannot delete your own account")
		return
	}

	if err := api.Auth.DeleteUser(r.Context(), userID); err != nil {
		api.errorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewOKResponseWithClock(struct{}{}, api.Clock))
}
