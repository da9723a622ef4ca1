package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/vitaldash/internal/config"
	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/health"
	"github.com/speedwagon-io/vitaldash/internal/history"
	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/metrics"
	"github.com/speedwagon-io/vitaldash/internal/model"
	"github.com/speedwagon-io/vitaldash/internal/status"
)

var testRoster = &config.Roster{
	Title:   "Floor A",
	Columns: []string{"Name", "Department", "Status"},
	Employees: []config.EmployeeConfig{
		{Name: "Ada", Department: "Ops", Status: "normal"},
		{Name: "Bo", Department: "Ops", Status: "on leave"},
		{Name: "Cy", Department: "Weld", Status: "  DANGER "},
		{Name: "Di", Department: "Pack", Status: "warning"},
	},
}

func newFeed(t *testing.T, code int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/data"
}

func newServer(t *testing.T, feedURL string, opts ...Option) http.Handler {
	t.Helper()
	log := sl.Discard()
	client := feed.NewClient(log, feedURL, time.Second)
	renderer := feed.NewRenderer(log, client, nil)
	normalizer := status.NewNormalizer(log, config.MatchSubstring)
	return NewServer(log, config.HTTPConfig{Address: ":0"}, testRoster, normalizer, renderer, opts...).Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestEmployeesPageIsNormalizedAndSorted(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusOK, `[]`))

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<td class="status danger" style="background-color: #ef4444; color: white">Danger</td>`)
	assert.Contains(t, body, `<td class="status warning" style="background-color: #facc15; color: black">Warning</td>`)
	assert.Contains(t, body, `<td class="status">on leave</td>`)

	iCy := strings.Index(body, "<td>Cy</td>")
	iDi := strings.Index(body, "<td>Di</td>")
	iAda := strings.Index(body, "<td>Ada</td>")
	iBo := strings.Index(body, "<td>Bo</td>")
	require.True(t, iCy > 0 && iDi > 0 && iAda > 0 && iBo > 0)
	assert.True(t, iCy < iDi && iDi < iAda && iAda < iBo, "rows not sorted by severity")
}

func TestSensorsPageRendersColumns(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusOK, `{"sensor_outputs": {"Temp": [38.5], "HeartRate": [70], "AccelX": [1], "AccelY": [2], "AccelZ": [3]}}`))

	rec := get(t, h, "/sensors")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(),
		`<tr><td>38.50</td><td>70.00</td><td>(1.00, 2.00, 3.00)</td><td class="status danger">Danger</td></tr>`)
}

func TestSensorsPageRecords(t *testing.T) {
	tests := []struct {
		body  string
		label string
	}{
		{`[{"Temp": 36.0, "HeartRate": 90, "AccelX": 0, "AccelY": 0, "AccelZ": 0}]`, `<td class="status warning">Warning</td>`},
		{`[{"Temp": 36.0, "HeartRate": 60, "AccelX": 0, "AccelY": 0, "AccelZ": 0}]`, `<td class="status normal">Normal</td>`},
	}

	for _, tt := range tests {
		h := newServer(t, newFeed(t, http.StatusOK, tt.body))
		rec := get(t, h, "/sensors")
		assert.Contains(t, rec.Body.String(), tt.label)
	}
}

func TestSensorsPageErrorRow(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusInternalServerError, `oops`))

	rec := get(t, h, "/sensors")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<tr><td class="error" colspan="4">Error loading data</td></tr>`)
	assert.Equal(t, 1, strings.Count(body, "<tr><td"))
}

func TestSensorsJSON(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusOK, `not json`))

	rec := get(t, h, "/api/sensors")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows  []feed.RowView `json:"rows"`
		Error string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Rows)
	assert.Equal(t, feed.ErrorText, resp.Error)
}

func TestEmployeesJSON(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusOK, `[]`))

	rec := get(t, h, "/api/employees")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		Cells []string   `json:"cells"`
		Tier  model.Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 4)
	assert.Equal(t, model.TierDanger, resp[0].Tier)
	assert.Equal(t, model.TierUnknown, resp[3].Tier)
}

func TestEmployeePage(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusOK, `[]`))

	rec := get(t, h, "/employee?name=Grace%20Hopper")
	assert.Contains(t, rec.Body.String(), `<h1 id="employee-name">Grace Hopper</h1>`)

	rec = get(t, h, "/employee")
	assert.Contains(t, rec.Body.String(), `<h1 id="employee-name">Unknown Employee</h1>`)

	rec = get(t, h, "/employee?name=")
	assert.Contains(t, rec.Body.String(), `<h1 id="employee-name">Unknown Employee</h1>`)

	rec = get(t, h, "/employee?name=%20")
	assert.Contains(t, rec.Body.String(), `<h1 id="employee-name"> </h1>`)

	rec = get(t, h, "/employee?name=%3Cscript%3E")
	assert.NotContains(t, rec.Body.String(), "<script>")
}

func TestHistoryDisabled(t *testing.T) {
	h := newServer(t, newFeed(t, http.StatusOK, `[]`))

	rec := get(t, h, "/api/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	store, err := history.NewSQLiteStore(sl.Discard(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Store(ctx, model.NewSnapshot([]model.SensorReading{{Temp: 36}}, nil)))
	}

	h := newServer(t, newFeed(t, http.StatusOK, `[]`), WithHistory(store, 2))

	rec := get(t, h, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var snaps []model.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	assert.Len(t, snaps, 2)

	rec = get(t, h, "/api/history?limit=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	assert.Len(t, snaps, 1)

	rec = get(t, h, "/api/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetricsMounted(t *testing.T) {
	m := metrics.New()
	hh := health.NewHandler(sl.Discard())
	h := newServer(t, newFeed(t, http.StatusOK, `[]`), WithMetrics(m), WithHealth(hh))

	assert.Equal(t, http.StatusOK, get(t, h, "/live").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)

	get(t, h, "/")
	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vitaldash_status_rows_normalized_total{tier="danger"} 1`)
}
