package restapi

import (
	"time"

	"github.com/canvasstrack/voterroll/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with a per-client rate limiter.
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second).TrustProxies(app.Config.TrustedProxies),
	}
}

// Shutdown stops background work owned by the API. It is safe to call more
// than once.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
