package web

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

	"gomical/internal/calendar"
	"gomical/internal/config"
	"gomical/internal/export"
	"gomical/internal/model"
	"gomical/internal/store"
)

type fakeHolidays map[string]string

func (f fakeHolidays) Lookup(t time.Time) (string, bool) {
	name, ok := f[t.Format("2006-01-02")]
	return name, ok
}

type fakeExporter struct {
	busy       bool
	err        error
	lastMonth  calendar.Month
	lastYear   int
	yearCalled bool
}

func (f *fakeExporter) ExportMonth(_ context.Context, m calendar.Month) (string, error) {
	f.lastMonth = m
	return "exports/gomi-calendar-2025-03.pdf", f.err
}

func (f *fakeExporter) ExportYear(_ context.Context, year int) (string, error) {
	f.lastYear = year
	f.yearCalled = true
	return "exports/gomi-calendar-2025-12months.pdf", f.err
}

func (f *fakeExporter) Busy() bool { return f.busy }

func newTestServer(t *testing.T) (*Server, *fakeExporter) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.StatePath = filepath.Join(t.TempDir(), "state.json")
	cfg.Export.Dir = t.TempDir()

	exp := &fakeExporter{}
	holidays := fakeHolidays{"2025-01-01": "元日"}

	srv, err := NewServer(cfg, store.Open(cfg.StatePath), holidays, exp, time.UTC)
	require.NoError(t, err)
	return srv, exp
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCalendarPageRenders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?year=2025&month=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2025年 1月")
	assert.Contains(t, body, "燃やすごみ")
	assert.Contains(t, body, "元日")
}

func TestPrintPageHasReadyMarker(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/print?year=2025&month=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-ready="true"`)
	// The print view carries no reminder banner or settings panel.
	assert.NotContains(t, body, "tomorrow-banner")
	assert.NotContains(t, body, "収集ルール設定")
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Len(t, state.Types, 7)
}

func TestAddAndDeleteCategory(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/categories", `{"label": "Glass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Added    bool           `json:"added"`
		Category model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Added)
	assert.Equal(t, "glass", resp.Category.ID)

	rec = doJSON(t, h, http.MethodDelete, "/api/categories/glass", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/categories/glass", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCategoryBlankLabel(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/categories", `{"label": "   "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Added bool `json:"added"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Added)
}

func TestDeleteLastCategoryConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	var state model.State
	rec := doJSON(t, h, http.MethodGet, "/api/state", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	for _, c := range state.Types[1:] {
		rec = doJSON(t, h, http.MethodDelete, "/api/categories/"+c.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/categories/"+state.Types[0].ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRuleMutations(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/rules/burnable/mode", `{"mode": "nth"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/rules/burnable/weekday", `{"day": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/rules/burnable/nth", `{"n": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.State
	rec = doJSON(t, h, http.MethodGet, "/api/state", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	rule := state.Rules["burnable"]
	assert.Equal(t, model.ModeNth, rule.Mode)
	assert.Contains(t, rule.Weekdays, 1)
	assert.Contains(t, rule.Nth, 2)

	rec = doJSON(t, h, http.MethodPost, "/api/rules/burnable/mode", `{"mode": "hourly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/rules/nope/mode", `{"mode": "off"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/rules/burnable/weekday", `{"day": 9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/categories", `{"label": "Glass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Len(t, state.Types, 7)
}

func TestDayDetail(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/day?date=2025-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail DayDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 1, detail.Nth)
	assert.Equal(t, "元日", detail.Holiday)
	// 2025-01-01 is a Wednesday; burnable collects on Wed/Sat by default.
	require.NotEmpty(t, detail.Categories)
	assert.Equal(t, "burnable", detail.Categories[0].ID)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/day?date=notadate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidaysEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/holidays?year=2025&month=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, map[string]string{"2025-01-01": "元日"}, out)
}

func TestExportEndpoints(t *testing.T) {
	srv, exp := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/export/month?year=2025&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, calendar.Month{Year: 2025, MonthNum: 3}, exp.lastMonth)

	rec = doJSON(t, h, http.MethodPost, "/api/export/year?year=2025&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, exp.yearCalled)
	assert.Equal(t, 2025, exp.lastYear)
}

func TestExportBusyAndTimeout(t *testing.T) {
	srv, exp := newTestServer(t)
	h := srv.Handler()

	exp.err = export.ErrBusy
	rec := doJSON(t, h, http.MethodPost, "/api/export/month", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	exp.err = export.ErrTimeout
	rec = doJSON(t, h, http.MethodPost, "/api/export/month", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	exp.busy = true
	rec = doJSON(t, h, http.MethodGet, "/api/export/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"busy":true`)
}

func TestFeedEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/calendar.ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "FREQ=WEEKLY")
}

func TestMethodChecks(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/reset", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/state", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
