package restapi

import (
	"net/http"

	"github.com/canvasstrack/voterroll/internal/canvass"
	"github.com/canvasstrack/voterroll/internal/models"
	"github.com/canvasstrack/voterroll/internal/utils"
)

type markVisitedRequest struct {
	Notes string `json:"notes"`
}

func (api *RestAPI) markVisitedHandler(w http.ResponseWriter, r *http.Request) {
	voterID := utils.ExtractIDFromParams(r)
	if voterID == "" {
		api.validationErrorResponse(w, r, map[string][]string{"id": {"required"}})
		return
	}

	var req markVisitedRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	visit, err := api.Canvass.MarkVisited(r.Context(), voterID, identity.UserID, req.Notes)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}
	api.Metrics.VisitsMarked.Inc()

	api.sendResponse(w, r, models.NewEntryResponseWithClock(models.NewVisit(visit), api.Clock))
}

func (api *RestAPI) unmarkVisitedHandler(w http.ResponseWriter, r *http.Request) {
	voterID := utils.ExtractIDFromParams(r)
	if voterID == "" {
		api.validationErrorResponse(w, r, map[string][]string{"id": {"required"}})
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	actor := canvass.Actor{UserID: identity.UserID, IsAdmin: identity.IsAdmin}
	if err := api.Canvass.Unmark(r.Context(), voterID, actor); err != nil {
		api.errorResponse(w, r, err)
		return
	}
	api.Metrics.VisitsUnmarked.Inc()

	api.sendResponse(w, r, models.NewOKResponseWithClock(struct{}{}, api.Clock))
}
