package restapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/canvasstrack/voterroll/internal/app"
	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/rolldb"
)

const (
	testJWTSecret = "restapi-test-secret-restapi-test"
	testPassword  = "password1"
)

var testNow = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

type testUsers struct {
	canvasser rolldb.User
	admin     rolldb.User
}

func testVoters() []rolldb.Voter {
	return []rolldb.Voter{
		{VoterID: "MH0001", SerialNo: 1, VoterName: "राम शिंदे", VoterNameEn: "Ram Shinde",
			RelativeName: sql.NullString{String: "Ganpat Shinde", Valid: true},
			Age:          sql.NullInt64{Int64: 52, Valid: true},
			Gender:       sql.NullString{String: "पु", Valid: true}},
		{VoterID: "MH0002", SerialNo: 2, VoterName: "अक्षय पाटील", VoterNameEn: "Akshay Patil",
			HouseNo: sql.NullString{String: "12B", Valid: true},
			Age:     sql.NullInt64{Int64: 29, Valid: true},
			Gender:  sql.NullString{String: "M", Valid: true}},
		{VoterID: "MH0003", SerialNo: 3, VoterName: "सीता जाधव", VoterNameEn: "Sita Jadhav",
			Age:    sql.NullInt64{Int64: 41, Valid: true},
			Gender: sql.NullString{String: "स्त्री", Valid: true}},
	}
}

// createTestApi builds an API over a seeded in-memory roll.
func createTestApi(t testing.TB) *RestAPI {
	return createTestApiWithConfig(t, nil)
}

func createTestApiWithConfig(t testing.TB, configure func(*appconf.Config, *rolldb.Config)) *RestAPI {
	t.Helper()

	cfg := appconf.Config{
		Env:        appconf.Test,
		RateLimit:  1000,
		JWTSecret:  testJWTSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	dbCfg := rolldb.NewConfig("sqlite", ":memory:", appconf.Test, false)
	if configure != nil {
		configure(&cfg, &dbCfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := app.New(cfg, dbCfg, search.DefaultTuning(), clock.NewMockClock(testNow), logger)
	require.NoError(t, err)

	api := NewRestAPI(application)
	t.Cleanup(func() {
		api.Shutdown()
		_ = application.Close()
	})
	return api
}

// seedTestData loads the sample roll and one canvasser and one admin.
func seedTestData(t testing.TB, api *RestAPI) testUsers {
	t.Helper()
	ctx := t.Context()

	require.NoError(t, api.DB.BulkInsertVoters(ctx, testVoters()))

	canvasser, err := api.Auth.CreateUser(ctx, auth.NewUser{Username: "alice", DisplayName: "Alice", Password: testPassword})
	require.NoError(t, err)
	admin, err := api.Auth.CreateUser(ctx, auth.NewUser{Username: "admin", DisplayName: "Admin", Password: testPassword, IsAdmin: true})
	require.NoError(t, err)

	return testUsers{canvasser: canvasser, admin: admin}
}

func tokenFor(t testing.TB, api *RestAPI, user rolldb.User) string {
	t.Helper()
	token, _, err := api.Auth.Tokens().Issue(user)
	require.NoError(t, err)
	return token
}

// serveRequest runs one request through the full API handler. body, when
// not nil, is sent as JSON.
func serveRequest(t testing.TB, api *RestAPI, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	api.SetupAPIRoutes().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t testing.TB, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func responseData(t testing.TB, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	data, ok := decodeResponse(t, rec)["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", rec.Body.String())
	return data
}

func responseList(t testing.TB, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	list, ok := responseData(t, rec)["list"].([]interface{})
	require.True(t, ok, "response has no list: %s", rec.Body.String())
	return list
}

func collectAllIdsFromObjects(t testing.TB, list []interface{}, key string) (ids []string) {
	t.Helper()
	for _, object := range list {
		object, ok := object.(map[string]interface{})
		require.True(t, ok)
		ids = append(ids, object[key].(string))
	}
	return ids
}

func serveHTTP(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
