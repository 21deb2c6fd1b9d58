package restapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHandler(t *testing.T) {
	api := createTestApi(t)
	users := seedTestData(t, api)

	t.Run("valid credentials return a token", func(t *testing.T) {
		rec := serveRequest(t, api, "POST", "/login", "", map[string]string{
			"username": "admin",
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		entry := responseData(t, rec)["entry"].(map[string]interface{})
		assert.Equal(t, users.admin.ID, entry["id"])
		assert.Equal(t, "Admin", entry["user"])
		assert.Equal(t, "admin", entry["userName"])
		assert.Equal(t, true, entry["isAdmin"])

		token, _ := entry["token"].(string)
		identity, err := api.Authenticate("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, users.admin.ID, identity.UserID)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		before := testutil.ToFloat64(api.Metrics.LoginFailures)

		rec := serveRequest(t, api, "POST", "/login", "", map[string]string{
			"username": "alice",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid username or password", decodeResponse(t, rec)["text"])
		assert.Equal(t, before+1, testutil.ToFloat64(api.Metrics.LoginFailures))
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		rec := serveRequest(t, api, "POST", "/login", "", map[string]string{
			"username": "mallory",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid username or password", decodeResponse(t, rec)["text"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := serveRequest(t, api, "POST", "/login", "", map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		fieldErrors := responseData(t, rec)["fieldErrors"].(map[string]interface{})
		assert.Contains(t, fieldErrors, "username")
		assert.Contains(t, fieldErrors, "password")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec := serveRequest(t, api, "POST", "/login", "", map[string]string{
			"username": "alice",
			"password": testPassword,
			"role":     "admin",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := serveRequest(t, api, "GET", "/login", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestLoginHandler_MalformedBody(t *testing.T) {
	api := createTestApi(t)

	req := newJSONRequest("POST", "/login", `{"username": "alice"`)
	rec := serveHTTP(api.SetupAPIRoutes(), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decodeResponse(t, rec)["text"].(string), "malformed JSON body"))
}
