package restapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/canvasstrack/voterroll/internal/models"
	"github.com/canvasstrack/voterroll/internal/utils"
)

// searchVotersHandler serves GET /voters?page&limit&search. Terms shorter
// than the configured minimum list the roll in serial order.
func (api *RestAPI) searchVotersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tuning := api.Searcher.Tuning()

	page, fieldErrors := utils.ParseIntParam(query, "page", 1, nil)
	limit, fieldErrors := utils.ParseIntParam(query, "limit", tuning.DefaultPageSize, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	term := query.Get("search")

	start := time.Now()
	result, err := api.Searcher.Search(r.Context(), term, page, limit)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}
	api.Metrics.ObserveSearch(result.Query.Active, time.Since(start), result.TotalMatches)

	var searchQuery *string
	if trimmed := strings.TrimSpace(term); trimmed != "" {
		searchQuery = &trimmed
	}

	list := models.NewScoredVoters(result.Rows, result.Query.Active)
	api.sendResponse(w, r, models.NewListResponseWithClock(list, models.Page{
		Page:          result.Page,
		PageSize:      result.PageSize,
		TotalResults:  result.TotalMatches,
		Showing:       result.Showing(),
		LimitExceeded: result.Query.Active && result.TotalMatches > int64(tuning.CandidateCap),
		SearchQuery:   searchQuery,
	}, api.Clock))
}

// voterStatsHandler serves GET /voters/stats?search under the same match
// condition as the search.
func (api *RestAPI) voterStatsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	stats, err := api.Canvass.Stats(r.Context(), identity.UserID, r.URL.Query().Get("search"))
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponseWithClock(models.NewVoterStats(stats), api.Clock))
}
