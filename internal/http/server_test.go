package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ventas/internal/core"
	"ventas/internal/log"
	"ventas/internal/middleware/ratelimit"
)

type fakeDashboards struct {
	dashboard core.Dashboard
	err       error
	png       []byte
	filters   []core.Filter
}

func (f *fakeDashboards) Build(ctx context.Context, flt core.Filter) (core.Dashboard, error) {
	f.filters = append(f.filters, flt)
	if f.err != nil {
		return core.Dashboard{}, f.err
	}
	d := f.dashboard
	d.Filter = flt
	return d, nil
}

func (f *fakeDashboards) Render(ctx context.Context, w io.Writer, flt core.Filter) (core.Dashboard, error) {
	d, err := f.Build(ctx, flt)
	if err != nil {
		return d, err
	}
	_, err = w.Write(f.png)
	return d, err
}

func sampleDashboard() core.Dashboard {
	return core.Dashboard{
		Daily: []core.DailyPoint{
			{Date: core.NewDate(2025, 6, 2), Total: decimal.NewFromInt(12000)},
			{Date: core.NewDate(2025, 6, 3), Total: decimal.NewFromInt(345)},
		},
		Summary: core.Summary{
			TotalRevenue: decimal.NewFromInt(12345),
			Invoices:     1234,
			Rows:         10,
			From:         core.NewDate(2025, 6, 2),
			To:           core.NewDate(2025, 6, 3),
		},
	}
}

func newTestServer(t *testing.T, dash *fakeDashboards, mutate ...func(*Dependencies)) *Server {
	t.Helper()
	deps := Dependencies{
		Dashboards:   dash,
		Logger:       log.New(log.Config{Output: io.Discard}),
		DefaultMonth: "2025-06",
	}
	for _, m := range mutate {
		m(&deps)
	}
	srv := NewServer(":0", deps)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func serve(srv *Server, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, &fakeDashboards{dashboard: sampleDashboard()})

	rr := serve(srv, http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Dashboard de Ventas", `hx-get="/ui/dashboard"`, `value="2025-06"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing security headers")
	}

	if rr := serve(srv, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	} else if !strings.Contains(rr.Body.String(), msgNotFound) {
		t.Errorf("unknown path body = %q", rr.Body.String())
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := serve(srv, http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}
}

func TestIndexRangePrefill(t *testing.T) {
	srv := newTestServer(t, &fakeDashboards{})

	rr := serve(srv, http.MethodGet, "/?mode=rango&start=2025-06-01&end=2025-06-15")
	body := rr.Body.String()
	for _, want := range []string{`value="2025-06-01"`, `value="2025-06-15"`, `value="rango" checked`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
}

func TestReadyFailingCheck(t *testing.T) {
	srv := newTestServer(t, &fakeDashboards{}, func(d *Dependencies) {
		d.ReadyChecks = map[string]ReadyCheck{
			"storage": func(context.Context) error { return errors.New("database is locked") },
		}
	})

	rr := serve(srv, http.MethodGet, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	var payload struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "not_ready" {
		t.Errorf("status = %q", payload.Status)
	}
	if got, _ := payload.Checks["storage"].(string); !strings.Contains(got, "database is locked") {
		t.Errorf("storage check = %v", payload.Checks["storage"])
	}
}

func TestDashboardPartial(t *testing.T) {
	dash := &fakeDashboards{dashboard: sampleDashboard()}
	srv := newTestServer(t, dash)

	rr := serve(srv, http.MethodGet, "/ui/dashboard?mode=mes&month=2025-06")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Total Vendido", "$12,345", "Total Facturas", "1,234", "/dashboard.png?mode=mes", "month=2025-06"} {
		if !strings.Contains(body, want) {
			t.Errorf("partial missing %q:\n%s", want, body)
		}
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "mes:2025-06") {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}
	if len(dash.filters) != 1 || dash.filters[0].Key() != "mes:2025-06" {
		t.Errorf("filters = %v", dash.filters)
	}
}

func TestDashboardPartialStatuses(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"incomplete range", "/ui/dashboard?mode=rango&start=2025-06-01", core.ErrIncompleteRange, http.StatusOK, "Selecciona un rango de dos fechas"},
		{"no data", "/ui/dashboard?mode=mes&month=2030-01", core.ErrNoData, http.StatusOK, "No hay datos para el mes o rango seleccionado"},
		{"bad month", "/ui/dashboard?mode=mes&month=junio", nil, http.StatusBadRequest, `class="error"`},
		{"backend failure", "/ui/dashboard", errors.New("disk on fire"), http.StatusInternalServerError, msgRenderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeDashboards{err: tt.err})
			rr := serve(srv, http.MethodGet, tt.target)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
			if strings.Contains(rr.Body.String(), "disk on fire") {
				t.Error("internal error leaked to client")
			}
			if tt.wantStatus == http.StatusInternalServerError && !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"error"`) {
				t.Errorf("HX-Trigger = %q, want an error notification", rr.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestDashboardImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	srv := newTestServer(t, &fakeDashboards{dashboard: sampleDashboard(), png: png})

	rr := serve(srv, http.MethodGet, "/dashboard.png?mode=rango&start=2025-06-01&end=2025-06-30")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Equal(rr.Body.Bytes(), png) {
		t.Errorf("body = %q", rr.Body.Bytes())
	}

	if rr := serve(srv, http.MethodPost, "/dashboard.png"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status=%d", rr.Code)
	}
}

func TestDashboardImageStatuses(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
	}{
		{"no data", "/dashboard.png?month=2030-01", core.ErrNoData, http.StatusUnprocessableEntity},
		{"incomplete range", "/dashboard.png?mode=rango", core.ErrIncompleteRange, http.StatusUnprocessableEntity},
		{"bad date", "/dashboard.png?mode=rango&start=ayer", nil, http.StatusBadRequest},
		{"render failure", "/dashboard.png", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeDashboards{err: tt.err})
			rr := serve(srv, http.MethodGet, tt.target)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct == "image/png" {
				t.Error("error response must not claim to be an image")
			}
			if msg := warningMessage(tt.err); msg != "" && !strings.Contains(rr.Body.String(), msg) {
				t.Errorf("body = %q, want warning %q", rr.Body.String(), msg)
			}
		})
	}
}

func TestDashboardImageRateLimit(t *testing.T) {
	srv := newTestServer(t, &fakeDashboards{dashboard: sampleDashboard(), png: []byte("png")}, func(d *Dependencies) {
		d.RateLimit = ratelimit.Config{RequestsPerMinute: 1}
	})

	if rr := serve(srv, http.MethodGet, "/dashboard.png"); rr.Code != http.StatusOK {
		t.Fatalf("first status=%d", rr.Code)
	}
	rr := serve(srv, http.MethodGet, "/dashboard.png")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}

	// The partial is not limited.
	if rr := serve(srv, http.MethodGet, "/ui/dashboard"); rr.Code != http.StatusOK {
		t.Errorf("partial status=%d", rr.Code)
	}

	metrics := serve(srv, http.MethodGet, "/metrics").Body.String()
	for _, want := range []string{"rate_limit_hits_total 1",
		`dashboards_built_total{endpoint="image"} 1`,
		`dashboards_built_total{endpoint="partial"} 1`,
		`dashboards_built_total{endpoint="json"} 0`,
		"http_requests_total",
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q:\n%s", want, metrics)
		}
	}
}

func TestDashboardOutcomesCountedPerEndpoint(t *testing.T) {
	dash := &fakeDashboards{dashboard: sampleDashboard(), png: []byte("png")}
	srv := newTestServer(t, dash)

	// One page load fetches the partial and then the image.
	serve(srv, http.MethodGet, "/ui/dashboard?mode=mes&month=2025-06")
	serve(srv, http.MethodGet, "/dashboard.png?mode=mes&month=2025-06")
	dash.err = core.ErrNoData
	serve(srv, http.MethodGet, "/ui/dashboard?mode=mes&month=2025-07")
	dash.err = errors.New("disk on fire")
	serve(srv, http.MethodGet, "/api/dashboard?mode=mes&month=2025-06")

	metrics := serve(srv, http.MethodGet, "/metrics").Body.String()
	for _, want := range []string{
		`dashboards_built_total{endpoint="partial"} 1`,
		`dashboards_built_total{endpoint="image"} 1`,
		`dashboard_warnings_total{endpoint="partial"} 1`,
		`dashboard_warnings_total{endpoint="image"} 0`,
		`dashboard_failures_total{endpoint="json"} 1`,
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q:\n%s", want, metrics)
		}
	}
}

func TestDashboardJSON(t *testing.T) {
	srv := newTestServer(t, &fakeDashboards{dashboard: sampleDashboard()})

	rr := serve(srv, http.MethodGet, "/api/dashboard?mode=mes&month=2025-06")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var d core.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.Summary.TotalRevenue.Equal(decimal.NewFromInt(12345)) {
		t.Errorf("TotalRevenue = %s", d.Summary.TotalRevenue)
	}
	if len(d.Daily) != 2 {
		t.Errorf("Daily = %d points", len(d.Daily))
	}

	srv = newTestServer(t, &fakeDashboards{err: core.ErrNoData})
	rr = serve(srv, http.MethodGet, "/api/dashboard")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("warning status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"warning"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestSuspiciousRequestRejected(t *testing.T) {
	dash := &fakeDashboards{}
	srv := newTestServer(t, dash)

	rr := serve(srv, http.MethodGet, "/.env")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	metrics := serve(srv, http.MethodGet, "/metrics").Body.String()
	if !strings.Contains(metrics, "suspicious_requests_total 1") {
		t.Errorf("metrics:\n%s", metrics)
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &fakeDashboards{})

	rr := serve(srv, http.MethodGet, "/static/app.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=3600") {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}
