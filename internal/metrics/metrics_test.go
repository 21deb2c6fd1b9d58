package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	m := New(func() int { return 3 })
	m.VisitsMarked.Inc()
	m.ObserveSearch(true, 20*time.Millisecond, 42)
	m.ObserveSearch(false, time.Millisecond, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "voterroll_visits_marked_total 1")
	assert.Contains(t, text, "voterroll_db_connections_in_use 3")
	assert.Contains(t, text, `voterroll_search_duration_seconds_count{mode="filtered"} 1`)
	assert.Contains(t, text, `voterroll_search_duration_seconds_count{mode="listing"} 1`)
	assert.Contains(t, text, "voterroll_search_total_matches_sum 42")
}

func TestInstrument(t *testing.T) {
	m := New(nil)
	h := m.Instrument("/voters", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/voters", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/voters", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
	count, err := testutil.GatherAndCount(m.Registry, "voterroll_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP voterroll_visits_unmarked_total Visit marks removed by administrators.
# TYPE voterroll_visits_unmarked_total counter
voterroll_visits_unmarked_total 0
`
	assert.NoError(t, testutil.CollectAndCompare(m.VisitsUnmarked, strings.NewReader(expected)))
}
