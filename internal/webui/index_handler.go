package webui

import (
	"net/http"
	"os"
)

// indexPath returns the first existing candidate for the entry page: the
// configured path, then the working directory, then the repository root as
// seen from a package test.
func (webUI *WebUI) indexPath() string {
	var possiblePaths []string
	if webUI.Application != nil && webUI.Config.IndexPath != "" {
		possiblePaths = append(possiblePaths, webUI.Config.IndexPath)
	}
	possiblePaths = append(possiblePaths,
		"index.html",
		"../../index.html", // For tests running from internal/webui
	)

	for _, path := range possiblePaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func (webUI *WebUI) indexHandler(w http.ResponseWriter, r *http.Request) {
	indexPath := webUI.indexPath()
	if indexPath == "" {
		http.Error(w, "index.html not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, indexPath)
}
