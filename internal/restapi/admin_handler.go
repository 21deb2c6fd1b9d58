package restapi

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/models"
	"github.com/canvasstrack/voterroll/internal/report"
	"github.com/canvasstrack/voterroll/rolldb"
)

const reportTitle = "Voters List Report"

func (api *RestAPI) userWiseStatsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := api.Canvass.UserWiseStats(r.Context())
	if err != nil {
		api.adminErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponseWithClock(models.NewUserStats(rows), api.Clock))
}

func (api *RestAPI) fullVoterListHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := api.Canvass.FullList(r.Context())
	if err != nil {
		api.adminErrorResponse(w, r, err)
		return
	}

	data := map[string]interface{}{
		"total": len(rows),
		"list":  models.NewVoters(rows),
	}
	api.sendResponse(w, r, models.NewOKResponseWithClock(data, api.Clock))
}

func (api *RestAPI) downloadPDFHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := api.Canvass.UserWiseStats(ctx)
	if err != nil {
		api.adminErrorResponse(w, r, err)
		return
	}
	voters, err := api.Canvass.FullList(ctx)
	if err != nil {
		api.adminErrorResponse(w, r, err)
		return
	}

	now := api.Clock.Now()
	var buf bytes.Buffer
	err = api.Reports.Render(&buf, report.Report{
		Title:       reportTitle,
		GeneratedAt: now,
		Users:       users,
		Voters:      voters,
	})
	if err != nil {
		api.adminErrorResponse(w, r, err)
		return
	}

	logging.LogOperation(logging.FromContext(ctx), "report_downloaded",
		slog.Int("voters", len(voters)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// adminErrorResponse reports every admin failure as a server error, except
// an exhausted pool which stays retryable.
func (api *RestAPI) adminErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rolldb.ErrStorageUnavailable) {
		api.storageUnavailableResponse(w, r, err)
		return
	}
	api.serverErrorResponse(w, r, err)
}
