package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"ventas/internal/core"
	"ventas/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.dashboards == nil {
		checks["dashboards"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	for name, check := range s.readyChecks {
		if err := check(ctx); err != nil {
			checks[name] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	_ = writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_response_time_ms_avg", "gauge", "Average response time in milliseconds", traceMetrics.AverageResponseTime.Milliseconds())
	perEndpoint := func(name, help string, value func(*outcomeCounters) *int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		for _, e := range dashboardEndpoints {
			fmt.Fprintf(w, "%s{endpoint=%q} %d\n", name, e, atomic.LoadInt64(value(s.metrics.outcomes[e])))
		}
		fmt.Fprintln(w)
	}
	perEndpoint("dashboards_built_total", "Dashboards built successfully", func(c *outcomeCounters) *int64 { return &c.built })
	perEndpoint("dashboard_warnings_total", "Dashboard requests answered with a warning", func(c *outcomeCounters) *int64 { return &c.warnings })
	perEndpoint("dashboard_failures_total", "Dashboard requests that failed", func(c *outcomeCounters) *int64 { return &c.failures })
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", s.limiter.Hits())
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.limiter.ActiveClients())
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.metrics.started).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError(msgNotFound).Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	// A bad filter on the landing page falls back to the default month.
	f, err := ParseFilter(r.URL.Query(), s.defaultMonth)
	if err != nil {
		f = core.MonthFilter(s.defaultMonth)
	}

	data := struct {
		Mode  string
		Month string
		Start string
		End   string
		Query string
	}{
		Mode:  string(f.Mode),
		Month: f.Month,
		Query: FilterQuery(f).Encode(),
	}
	if data.Month == "" {
		data.Month = s.defaultMonth
	}
	if len(f.Dates) > 0 {
		data.Start = f.Dates[0].Key()
		data.End = f.Dates[len(f.Dates)-1].Key()
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// dashboardView is what the partial template receives.
type dashboardView struct {
	FilterKey string
	Revenue   string
	Invoices  string
	Rows      int
	Days      int
	From      string
	To        string
	ImageURL  string
}

// handleDashboardPartial renders the counters and the image tag for HTMX.
// Warnings are swapped in with a 200 so the page keeps working.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx)

	f, err := ParseFilter(r.URL.Query(), s.defaultMonth)
	if err != nil {
		logger.WarnContext(ctx, "Invalid dashboard filter", log.FieldError, err)
		BadRequestError(msgInvalidFilter).Write(w)
		return
	}

	d, err := s.build(ctx, endpointPartial, f)
	if err != nil {
		if msg := warningMessage(err); msg != "" {
			WarningResponse(msg).Write(w)
			return
		}
		logger.ErrorContext(ctx, "Dashboard build failed", log.FieldError, err, log.FieldFilterMode, f.Mode)
		InternalServerError(msgRenderFailed).TriggerErrorNotification(msgRenderFailed).Write(w)
		return
	}

	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	view := dashboardView{
		FilterKey: f.Key(),
		Revenue:   core.FormatCurrency(d.Summary.TotalRevenue),
		Invoices:  core.FormatCount(int64(d.Summary.Invoices)),
		Rows:      d.Summary.Rows,
		Days:      len(d.Daily),
		From:      d.Summary.From.Key(),
		To:        d.Summary.To.Key(),
		ImageURL:  "/dashboard.png?" + FilterQuery(f).Encode(),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		logger.ErrorContext(ctx, "Dashboard template execution failed", log.FieldError, err, "template", "dashboard.html")
		InternalServerError(msgRenderFailed).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerDashboardLoaded(view.FilterKey).
		BodyHTML(buf.String()).
		Write(w)
}

// handleDashboardImage renders the composite PNG. The image is buffered so
// a failed render never leaves a half-written body.
func (s *Server) handleDashboardImage(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx)

	f, err := ParseFilter(r.URL.Query(), s.defaultMonth)
	if err != nil {
		http.Error(w, msgInvalidFilter+": "+err.Error(), http.StatusBadRequest)
		return
	}
	if s.dashboards == nil {
		http.Error(w, msgRenderFailed, http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	_, err = s.dashboards.Render(ctx, &buf, f)
	s.recordOutcome(endpointImage, err)
	if err != nil {
		status := statusFor(err)
		if msg := warningMessage(err); msg != "" {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		logger.ErrorContext(ctx, "Dashboard render failed",
			log.FieldComponent, log.ComponentRender,
			log.FieldError, err)
		http.Error(w, msgRenderFailed, status)
		return
	}

	logger.InfoContext(ctx, "Dashboard rendered",
		log.FieldComponent, log.ComponentRender,
		log.FieldFilterMode, f.Mode,
		log.FieldBytes, buf.Len(),
		log.FieldDuration, time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// handleDashboardJSON exposes the computed views without rendering.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	f, err := ParseFilter(r.URL.Query(), s.defaultMonth)
	if err != nil {
		_ = writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	d, err := s.build(ctx, endpointJSON, f)
	if err != nil {
		status := statusFor(err)
		if msg := warningMessage(err); msg != "" {
			_ = writeJSON(w, status, map[string]string{"warning": msg})
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Dashboard build failed", log.FieldError, err)
		_ = writeJSON(w, status, map[string]string{"error": msgRenderFailed})
		return
	}
	_ = writeJSON(w, http.StatusOK, d)
}

func (s *Server) build(ctx context.Context, endpoint string, f core.Filter) (core.Dashboard, error) {
	if s.dashboards == nil {
		return core.Dashboard{}, fmt.Errorf("dashboard service not configured")
	}
	d, err := s.dashboards.Build(ctx, f)
	s.recordOutcome(endpoint, err)
	return d, err
}
