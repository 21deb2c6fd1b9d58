package restapi

import (
	"net/http"
	"net/http/pprof"

	"github.com/canvasstrack/voterroll/internal/appconf"
)

// rateLimited applies rate limiting and compression to a public handler
func rateLimited(api *RestAPI, route string, finalHandler http.HandlerFunc) http.Handler {
	// Apply compression first (innermost)
	var handler http.Handler = CompressionMiddleware(finalHandler)

	// Then rate limiting - use the shared rate limiter instance
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler()(handler)
	}

	return api.Metrics.Instrument(route, NoStoreMiddleware(handler))
}

// authenticated validates the bearer token before rate limiting, so that
// limits apply per user.
func authenticated(api *RestAPI, route string, finalHandler http.HandlerFunc) http.Handler {
	var handler http.Handler = CompressionMiddleware(finalHandler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler()(handler)
	}
	return api.Metrics.Instrument(route, NoStoreMiddleware(api.requireAuth(handler)))
}

// adminOnly is authenticated plus an admin check
func adminOnly(api *RestAPI, route string, finalHandler http.HandlerFunc) http.Handler {
	var handler http.Handler = CompressionMiddleware(finalHandler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler()(handler)
	}
	return api.Metrics.Instrument(route, NoStoreMiddleware(api.requireAuth(api.requireAdmin(handler))))
}

func registerPprofHandlers(api *RestAPI, mux *http.ServeMux) {
	mux.Handle("GET /debug/pprof/", adminOnly(api, "pprof", pprof.Index))
	mux.Handle("GET /debug/pprof/cmdline", adminOnly(api, "pprof", pprof.Cmdline))
	mux.Handle("GET /debug/pprof/profile", adminOnly(api, "pprof", pprof.Profile))
	mux.Handle("GET /debug/pprof/symbol", adminOnly(api, "pprof", pprof.Symbol))
	mux.Handle("GET /debug/pprof/trace", adminOnly(api, "pprof", pprof.Trace))
}

// SetRoutes registers all API endpoints with compression applied per route
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	// Health check and metrics - no authentication required
	mux.Handle("GET /healthz", api.Metrics.Instrument("healthz", NoStoreMiddleware(http.HandlerFunc(api.healthHandler))))
	mux.Handle("GET /metrics", api.Metrics.Handler())

	mux.Handle("POST /login", rateLimited(api, "login", api.loginHandler))

	mux.Handle("GET /voters", authenticated(api, "voters", api.searchVotersHandler))
	mux.Handle("GET /voters/stats", authenticated(api, "voter_stats", api.voterStatsHandler))
	mux.Handle("POST /voters/{id}/visit", authenticated(api, "mark_visited", api.markVisitedHandler))
	mux.Handle("DELETE /voters/{id}/visit", authenticated(api, "unmark_visited", api.unmarkVisitedHandler))

	mux.Handle("GET /admin/user-wise-stats", adminOnly(api, "admin_user_wise_stats", api.userWiseStatsHandler))
	mux.Handle("GET /admin/voters-full-list", adminOnly(api, "admin_voters_full_list", api.fullVoterListHandler))
	mux.Handle("GET /admin/download-pdf", adminOnly(api, "admin_download_pdf", api.downloadPDFHandler))

	mux.Handle("GET /admin/users", adminOnly(api, "admin_users", api.listUsersHandler))
	mux.Handle("POST /admin/users", adminOnly(api, "admin_users", api.createUserHandler))
	mux.Handle("PUT /admin/users/{id}/password", adminOnly(api, "admin_user_password", api.setPasswordHandler))
	mux.Handle("DELETE /admin/users/{id}", adminOnly(api, "admin_user", api.deleteUserHandler))

	if api.Config.Env == appconf.Development {
		registerPprofHandlers(api, mux)
	}
}

// SetupAPIRoutes creates the API router with request IDs and security
// headers applied globally
func (api *RestAPI) SetupAPIRoutes() http.Handler {
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	return RequestIDMiddleware(api.WithSecurityHeaders(mux))
}
