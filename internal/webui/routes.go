package webui

import "net/http"

func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	// Static assets live next to the index page (must be before root handler)
	mux.HandleFunc("GET /static/{file}", webUI.staticHandler)

	mux.HandleFunc("GET /{$}", webUI.indexHandler)
}
