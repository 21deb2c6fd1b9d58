package webui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasstrack/voterroll/internal/app"
	"github.com/canvasstrack/voterroll/internal/appconf"
)

func TestStaticHandler_PathTraversal(t *testing.T) {
	tempDir := t.TempDir()

	indexPath := filepath.Join(tempDir, "index.html")
	require.NoError(t, os.WriteFile(indexPath, []byte("<html>index</html>"), 0o644))

	staticDir := filepath.Join(tempDir, "static")
	require.NoError(t, os.MkdirAll(staticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.css"), []byte("body { margin: 0 }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "config.json"), []byte(`{"secret": true}`), 0o644))

	secretDir := filepath.Join(tempDir, "static-secret")
	require.NoError(t, os.MkdirAll(secretDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(secretDir, "secret.css"), []byte("SECRET DATA"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "parent-secret.css"), []byte("PARENT SECRET"), 0o644))

	webUI := &WebUI{
		Application: &app.Application{
			Config: appconf.Config{IndexPath: indexPath},
		},
	}

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"valid file access", "/static/app.css", http.StatusOK},
		{"parent directory traversal with ..", "/static/../parent-secret.css", http.StatusNotFound},
		{"sibling directory attack", "/static/../static-secret/secret.css", http.StatusNotFound},
		{"encoded traversal", "/static/%2e%2e/static-secret/secret.css", http.StatusNotFound},
		{"backslash traversal", "/static/..\\static-secret\\secret.css", http.StatusBadRequest},
		{"disallowed extension", "/static/config.json", http.StatusNotFound},
		{"directory access attempt", "/static/", http.StatusNotFound},
		{"hidden file", "/static/.env.css", http.StatusNotFound},
		{"null byte injection", "/static/app.css%00.png", http.StatusNotFound},
		{"missing file", "/static/missing.css", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()

			webUI.staticHandler(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, "body: %s", rr.Body.String())
			assert.NotContains(t, rr.Body.String(), "SECRET")
		})
	}
}

func TestStaticHandler_ContentType(t *testing.T) {
	tempDir := t.TempDir()
	indexPath := filepath.Join(tempDir, "index.html")
	require.NoError(t, os.WriteFile(indexPath, []byte("<html></html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "static", "app.js"), []byte("console.log(1)"), 0o644))

	webUI := &WebUI{Application: &app.Application{Config: appconf.Config{IndexPath: indexPath}}}

	rr := httptest.NewRecorder()
	webUI.staticHandler(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rr.Header().Get("Content-Type"))
}
