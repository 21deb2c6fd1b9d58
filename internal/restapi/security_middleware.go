package restapi

import (
	"net/http"
	"slices"
	"strings"
)

const (
	apiCSP   = "default-src 'none'; frame-ancestors 'none';"
	webUICSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; frame-ancestors 'none';"
)

// WithSecurityHeaders wraps handler with the security headers and the CORS
// policy configured for this deployment.
func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(api.Config.AllowedOrigins, handler)
}

// securityHeaders sets hardening headers on every response and answers CORS
// preflights. With no allowed origins any origin may call the API; tokens
// travel in the Authorization header, never in cookies.
func securityHeaders(allowedOrigins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		// canvassers use phones; the page never needs device sensors
		h.Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")
		if isHTTPS(r) {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		if r.URL.Path == "/" {
			h.Set("Content-Security-Policy", webUICSP)
		} else {
			h.Set("Content-Security-Policy", apiCSP)
		}

		if origin := r.Header.Get("Origin"); origin != "" {
			switch {
			case len(allowedOrigins) == 0:
				h.Set("Access-Control-Allow-Origin", "*")
			case slices.Contains(allowedOrigins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			default:
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After, Content-Disposition")
			h.Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
