package restapi

import "net/http"

// NoStoreMiddleware keeps API responses out of browser and proxy caches.
// Voter details and visit marks are personal data and change while a
// canvass is running.
func NoStoreMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		h.Add("Vary", "Authorization")

		next.ServeHTTP(w, r)
	})
}
