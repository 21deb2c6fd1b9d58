package restapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/logging"
)

const identityKey contextKey = "identity"

// IdentityFromContext returns the caller verified by requireAuth.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

// requireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func (api *RestAPI) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := api.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			text := "invalid or missing token"
			if errors.Is(err, auth.ErrTokenExpired) {
				text = "token expired"
			}
			api.unauthorizedResponse(w, r, text)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		logger := logging.FromContext(ctx).With(slog.String("user_id", identity.UserID))
		ctx = logging.WithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin must run after requireAuth.
func (api *RestAPI) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin {
			api.forbiddenResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
