package restapi

import (
	"context"
	"net/http"
	"time"

	"github.com/canvasstrack/voterroll/internal/models"
)

const healthCheckTimeout = 2 * time.Second

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := api.DB.Ping(ctx); err != nil {
		api.storageUnavailableResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponseWithClock(map[string]interface{}{
		"status":             "ok",
		"dbConnectionsInUse": api.DB.InUseConnections(),
	}, api.Clock))
}
