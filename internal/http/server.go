package http

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"ventas/internal/core"
	"ventas/internal/log"
	"ventas/internal/middleware/ratelimit"
	"ventas/internal/middleware/security"
	"ventas/internal/middleware/trace"
	appweb "ventas/web"
)

// DashboardBuilder computes and renders dashboards for a filter.
type DashboardBuilder interface {
	Build(ctx context.Context, f core.Filter) (core.Dashboard, error)
	Render(ctx context.Context, w io.Writer, f core.Filter) (core.Dashboard, error)
}

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// Dependencies are the collaborators a Server needs.
type Dependencies struct {
	Dashboards   DashboardBuilder
	Logger       *log.Logger
	DefaultMonth string
	// ReadyChecks are run by /readyz, keyed by dependency name.
	ReadyChecks map[string]ReadyCheck
	// RateLimit applies to image rendering only.
	RateLimit ratelimit.Config
}

// Server serves the dashboard page, its partial, the PNG and the JSON view.
type Server struct {
	http.Server

	templates    *template.Template
	dashboards   DashboardBuilder
	logger       *log.Logger
	defaultMonth string
	readyChecks  map[string]ReadyCheck

	limiter  *ratelimit.Limiter
	detector *security.Detector
	headers  *security.HeadersMiddleware
	tracer   *trace.Middleware

	metrics      appMetrics
	shutdownOnce sync.Once
}

// Dashboard endpoints, used as the metrics label. A page load hits the
// partial and then the image, so each is counted on its own.
const (
	endpointPartial = "partial"
	endpointImage   = "image"
	endpointJSON    = "json"
)

var dashboardEndpoints = []string{endpointPartial, endpointImage, endpointJSON}

type outcomeCounters struct {
	built    int64
	warnings int64
	failures int64
}

type appMetrics struct {
	started time.Time
	// fixed key set, filled in NewServer
	outcomes map[string]*outcomeCounters
}

func newAppMetrics() appMetrics {
	m := appMetrics{started: time.Now(), outcomes: make(map[string]*outcomeCounters, len(dashboardEndpoints))}
	for _, e := range dashboardEndpoints {
		m.outcomes[e] = &outcomeCounters{}
	}
	return m
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		dashboards:   deps.Dashboards,
		logger:       logger,
		defaultMonth: deps.DefaultMonth,
		readyChecks:  deps.ReadyChecks,
		limiter:      ratelimit.NewLimiter(deps.RateLimit),
		detector:     detector,
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:       trace.NewMiddleware(logger, detector.ClientIP),
		metrics:      newAppMetrics(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	limited := s.limiter.Middleware(detector.ClientIP, s.onRateLimit)

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/dashboard", s.handleDashboardPartial)
	mux.Handle("/dashboard.png", limited(http.HandlerFunc(s.handleDashboardImage)))
	mux.HandleFunc("/api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.Handler = s.tracer.Middleware(s.headers.Middleware(s.rejectSuspicious(mux)))
	return s
}

// rejectSuspicious answers probes for dotfiles, traversal and known scanners
// with a bare 404.
func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request rejected",
				log.FieldComponent, log.ComponentSecurity,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.UserAgent())
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops background workers and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) recordOutcome(endpoint string, err error) {
	c := s.metrics.outcomes[endpoint]
	switch {
	case err == nil:
		atomic.AddInt64(&c.built, 1)
	case core.IsWarning(err):
		atomic.AddInt64(&c.warnings, 1)
	case !isInvalidInput(err):
		atomic.AddInt64(&c.failures, 1)
	}
}
