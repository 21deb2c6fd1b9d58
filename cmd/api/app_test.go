package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/rolldb"
)

const testSecret = "cmd-api-test-secret-cmd-api-test"

func testConfig(port int) (appconf.Config, rolldb.Config) {
	cfg := appconf.Config{
		Port:       port,
		Env:        appconf.Test,
		RateLimit:  100,
		JWTSecret:  testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		IndexPath:  filepath.Join("..", "..", "index.html"),
	}
	return cfg, rolldb.NewConfig("sqlite", ":memory:", appconf.Test, false)
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		envJWTSecret: "  from-the-environment  ",
		envDBDSN:     "postgres://canvass@db/voters",
	}
	cfg := appconf.Config{JWTSecret: "from-flags"}
	dbCfg := rolldb.Config{DSN: "./voters.db"}

	ApplyEnvOverrides(&cfg, &dbCfg, func(key string) string { return env[key] })
	assert.Equal(t, "from-the-environment", cfg.JWTSecret)
	assert.Equal(t, "postgres://canvass@db/voters", dbCfg.DSN)

	cfg = appconf.Config{JWTSecret: "from-flags"}
	dbCfg = rolldb.Config{DSN: "./voters.db"}
	ApplyEnvOverrides(&cfg, &dbCfg, func(string) string { return "" })
	assert.Equal(t, "from-flags", cfg.JWTSecret)
	assert.Equal(t, "./voters.db", dbCfg.DSN)
}

func TestValidateSecrets(t *testing.T) {
	assert.Error(t, validateSecrets(appconf.Config{}))
	assert.Error(t, validateSecrets(appconf.Config{Env: appconf.Production, JWTSecret: "short"}))
	assert.NoError(t, validateSecrets(appconf.Config{Env: appconf.Development, JWTSecret: "short"}))
	assert.NoError(t, validateSecrets(appconf.Config{Env: appconf.Production, JWTSecret: strings.Repeat("k", 32)}))
}

func TestBuildApplicationWithMemoryDB(t *testing.T) {
	cfg, dbCfg := testConfig(4000)

	coreApp, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
	require.NoError(t, err, "BuildApplication should not return an error")
	t.Cleanup(func() { _ = coreApp.Close() })

	assert.NotNil(t, coreApp.Logger, "Logger should be initialized")
	assert.NotNil(t, coreApp.DB, "Database should be open")
	assert.Equal(t, cfg, coreApp.Config, "Config should match input")
}

func TestBuildApplicationErrorHandling(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		cfg, dbCfg := testConfig(4000)
		cfg.JWTSecret = ""

		_, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
		assert.ErrorContains(t, err, envJWTSecret)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg, dbCfg := testConfig(4000)
		dbCfg.Driver = "oracle"

		_, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
		assert.ErrorContains(t, err, "failed to initialize application")
	})
}

func TestCreateServer(t *testing.T) {
	cfg, dbCfg := testConfig(8080)
	coreApp, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)
	t.Cleanup(func() {
		api.Shutdown()
		_ = coreApp.Close()
	})

	assert.Equal(t, ":8080", srv.Addr, "Server address should match port")
	assert.NotNil(t, srv.Handler, "Server handler should be set")
	assert.Equal(t, time.Minute, srv.IdleTimeout)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
}

func TestCreateServerHandlerResponds(t *testing.T) {
	cfg, dbCfg := testConfig(8080)
	coreApp, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)
	t.Cleanup(func() {
		api.Shutdown()
		_ = coreApp.Close()
	})

	t.Run("health check", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("web ui", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("protected api", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/voters", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRunUntilShutsDownCleanly(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	cfg, dbCfg := testConfig(port)
	coreApp, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runUntil(ctx, srv, api, logger)
	}()

	// wait until the server answers, then stop it
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strings.TrimPrefix(srv.Addr, ":") + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "Server should shutdown cleanly")
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Error(t, coreApp.DB.Ping(context.Background()), "database should be closed after shutdown")
}

func TestRunUntilReportsListenErrors(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck

	cfg, dbCfg := testConfig(listener.Addr().(*net.TCPAddr).Port)
	coreApp, err := BuildApplication(cfg, dbCfg, search.DefaultTuning())
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)
	srv.Addr = listener.Addr().String()

	err = runUntil(context.Background(), srv, api, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "server failed to start")
}
