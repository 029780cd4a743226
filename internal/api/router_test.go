package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "soc-dashboard/internal/common/errors"
	"soc-dashboard/internal/common/logger"
	"soc-dashboard/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	payloads map[string]string
	err      error
	calls    int32
}

func (f *fakeReports) Has(id string) bool {
	_, ok := f.payloads[id]
	return ok || f.err != nil
}

func (f *fakeReports) Render(_ context.Context, id string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.payloads[id]), nil
}

type fakePinger struct {
	err   error
	calls int32
}

func (f *fakePinger) Ping(context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

func allReports() map[string]string {
	return map[string]string{
		"alerts":        `{"last24h":42,"allTime":1000}`,
		"severity":      `[{"key":12,"doc_count":3}]`,
		"critical":      `{"critical":0}`,
		"timeline":      `[]`,
		"top-attackers": `[{"key":"10.0.0.5","doc_count":30}]`,
		"mitre":         `[]`,
		"top-hosts":     `[]`,
		"failed-logins": `[]`,
	}
}

func serve(t *testing.T, h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ReportRoutes(t *testing.T) {
	reports := &fakeReports{payloads: allReports()}
	router := NewRouter(Options{Reports: reports, Logger: logger.NewTestLogger(t)})

	for _, rep := range registry.Default().Reports {
		t.Run(rep.ID, func(t *testing.T) {
			rec := serve(t, router, http.MethodGet, rep.Path, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, reports.payloads[rep.ID], rec.Body.String())
		})
	}
}

func TestRouter_FailuresMapTo500(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "status error",
			err:     apperrors.NewStatusError("search", 401, `{"error":"unauthorized"}`),
			message: "datastore search request failed with status code 401",
		},
		{
			name:    "transport error",
			err:     apperrors.NewTransportError("count", errors.New("dial tcp: connection refused")),
			message: "datastore count request failed: dial tcp: connection refused",
		},
		{
			name:    "shape error",
			err:     apperrors.NewShapeError("mitre", "aggregations is required"),
			message: "unexpected datastore response for report mitre",
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Options{Reports: &fakeReports{err: tt.err}, Logger: logger.NewTestLogger(t)})

			rec := serve(t, router, http.MethodGet, "/api/threats/mitre", nil)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"error":"`+tt.message)
		})
	}
}

func TestRouter_HealthNeverTouchesDatastore(t *testing.T) {
	reports := &fakeReports{err: errors.New("datastore down")}
	pinger := &fakePinger{err: errors.New("unreachable")}
	router := NewRouter(Options{Reports: reports, Datastore: pinger})

	rec := serve(t, router, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Zero(t, atomic.LoadInt32(&reports.calls))
	assert.Zero(t, atomic.LoadInt32(&pinger.calls))
}

func TestRouter_Ready(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		router := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}, Datastore: &fakePinger{}})
		rec := serve(t, router, http.MethodGet, "/api/ready", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("unavailable", func(t *testing.T) {
		router := NewRouter(Options{
			Reports:   &fakeReports{payloads: allReports()},
			Datastore: &fakePinger{err: errors.New("connection refused")},
		})
		rec := serve(t, router, http.MethodGet, "/api/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","error":"connection refused"}`, rec.Body.String())
	})

	t.Run("no datastore", func(t *testing.T) {
		router := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}})
		rec := serve(t, router, http.MethodGet, "/api/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_RequestID(t *testing.T) {
	router := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}})

	rec := serve(t, router, http.MethodGet, "/api/health", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = serve(t, router, http.MethodGet, "/api/health", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	router := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}})

	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/api/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, router, http.MethodPost, "/api/alerts", nil).Code)
}

func TestRouter_SkipsUnimplementedCatalogEntries(t *testing.T) {
	catalog := &registry.ReportRegistry{Reports: []registry.Report{
		{ID: "critical", Path: "/api/alerts/critical"},
		{ID: "ghost", Path: "/api/ghost"},
	}}
	router := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}, Catalog: catalog})

	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/api/alerts/critical", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/api/ghost", nil).Code)
}

func TestRouter_Metrics(t *testing.T) {
	router := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}, MetricsEnabled: true})

	serve(t, router, http.MethodGet, "/api/alerts/critical", nil)
	rec := serve(t, router, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `soc_http_requests_total{method="GET",route="/api/alerts/critical",status="200"}`)

	disabled := NewRouter(Options{Reports: &fakeReports{payloads: allReports()}})
	assert.Equal(t, http.StatusNotFound, serve(t, disabled, http.MethodGet, "/metrics", nil).Code)
}

func TestRouter_CORS(t *testing.T) {
	router := NewRouter(Options{
		Reports:     &fakeReports{payloads: allReports()},
		CORSOrigins: []string{"https://dashboard.example.com"},
	})

	rec := serve(t, router, http.MethodGet, "/api/health", http.Header{"Origin": {"https://dashboard.example.com"}})
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, router, http.MethodGet, "/api/health", http.Header{"Origin": {"https://evil.example.com"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RecoversPanics(t *testing.T) {
	router := NewRouter(Options{Reports: panicReports{}})

	rec := serve(t, router, http.MethodGet, "/api/alerts", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	// The server keeps serving after a panic.
	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/api/health", nil).Code)
}

type panicReports struct{}

func (panicReports) Has(string) bool { return true }
func (panicReports) Render(context.Context, string) ([]byte, error) {
	panic("render exploded")
}
