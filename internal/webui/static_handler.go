package webui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var allowedStaticExtensions = map[string]string{
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
	".html":  "text/html; charset=utf-8",
}

// staticDir is the static directory beside the index page.
func (webUI *WebUI) staticDir() string {
	if index := webUI.indexPath(); index != "" {
		return filepath.Join(filepath.Dir(index), "static")
	}
	return "static"
}

func (webUI *WebUI) staticHandler(w http.ResponseWriter, r *http.Request) {
	fileName := strings.TrimPrefix(r.URL.Path, "/static/")

	if strings.Contains(fileName, `\`) {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if fileName == "" || strings.ContainsAny(fileName, "/\x00") || strings.HasPrefix(fileName, ".") {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType, ok := allowedStaticExtensions[strings.ToLower(filepath.Ext(fileName))]
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	filePath := filepath.Join(webUI.staticDir(), fileName)
	info, err := os.Stat(filePath)
	if err != nil || !info.Mode().IsRegular() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, filePath)
}
