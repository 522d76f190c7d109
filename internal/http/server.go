package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/reporting"
	"fintrack/internal/services"
	"fintrack/internal/workspace"
	appweb "fintrack/web"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Options configures a Server. Auth and Workspaces are required.
type Options struct {
	Addr               string
	Auth               auth.Session
	Workspaces         *workspace.Registry
	Activity           *services.ActivityService
	Formatter          *core.CurrencyFormatter
	Logger             *log.Logger
	RateLimitPerMinute int
	CookieSecure       bool
	Checks             map[string]ReadinessCheck
	Clock              func() time.Time

	// AlertCheckers are evaluated on every dashboard render. Defaults to
	// services.DefaultCheckers with the default reminder window.
	AlertCheckers []services.AlertChecker
	// TrustedProxies are extra CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

// Server serves the finance screens. It embeds http.Server so callers use
// ListenAndServe and Shutdown directly.
type Server struct {
	http.Server
	templates  *template.Template
	auth       auth.Session
	workspaces *workspace.Registry
	activity   *services.ActivityService
	formatter  *core.CurrencyFormatter
	logger     *log.Logger
	structured *log.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	checks        map[string]ReadinessCheck
	alertCheckers []services.AlertChecker
	cookieSecure  bool
	clock         func() time.Time
	appMetrics    *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	recordsCreated atomic.Int64
	logins         atomic.Int64
	loginFailures  atomic.Int64
	exports        atomic.Int64
	uptime         time.Time
}

// NewServer parses the embedded templates, builds the middleware chain and
// registers every route.
func NewServer(opts Options) (*Server, error) {
	if opts.Auth == nil || opts.Workspaces == nil {
		return nil, errors.New("http: auth session and workspace registry are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Formatter == nil {
		opts.Formatter = core.DefaultFormatter()
	}
	if opts.Activity == nil {
		opts.Activity = services.NewActivityService(nil, opts.Logger)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.AlertCheckers == nil {
		opts.AlertCheckers = services.DefaultCheckers(services.DefaultReminderWindow)
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector(opts.Logger)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		auth:             opts.Auth,
		workspaces:       opts.Workspaces,
		activity:         opts.Activity,
		formatter:        opts.Formatter,
		logger:           logger,
		structured:       log.NewStructuredLogger(logger).WithReporter(reporting.Capture),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(opts.Logger, detector.ExtractClientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Clock:             opts.Clock,
			Logger:            opts.Logger,
		}),
		checks:        opts.Checks,
		alertCheckers: opts.AlertCheckers,
		cookieSecure:  opts.CookieSecure,
		clock:         opts.Clock,
		appMetrics:    &appMetrics{uptime: opts.Clock()},
	}

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		return nil, err
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// middleware wraps mux in trace → security detection → headers → rate limit.
// Only POST requests count against the rate limit.
func (s *Server) middleware(mux http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, nil)(mux)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	return s.traceMiddleware.Middleware(
		s.securityDetector.Middleware(
			headers.Middleware(h)))
}

func (s *Server) routes(mux *http.ServeMux) error {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.Handle("GET /{$}", s.guard(s.handleDashboard))

	registerRecordScreen(mux, s, transactionScreen())
	registerRecordScreen(mux, s, budgetScreen())
	registerRecordScreen(mux, s, savingsScreen())

	mux.Handle("GET /reports", s.guard(s.handleReports))
	mux.Handle("GET /reports/data", s.guard(s.handleReportData))

	mux.Handle("GET /settings", s.guard(s.handleSettings))
	mux.Handle("POST /settings/toggle", s.guard(s.handleSettingToggle))
	mux.Handle("POST /settings/choice/open", s.guard(s.handleChoiceOpen))
	mux.Handle("POST /settings/choice/choose", s.guard(s.handleChoiceChoose))
	mux.Handle("POST /settings/choice/close", s.guard(s.handleChoiceClose))
	mux.Handle("GET /settings/export.csv", s.guard(s.handleExport))

	// Anything else is guarded too, so unknown paths still send anonymous
	// visitors to the login page.
	mux.Handle("/", s.guard(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Page not found").Write(w)
	}))
	return nil
}

// Limiter exposes the rate limiter so its cleanup loop can join the serve
// lifecycle.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.rateLimiter
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": s.formatter.Format,
		"percentLabel": func(pct float64) string {
			if n, ok := core.RoundPercent(pct); ok {
				return fmt.Sprintf("%d%%", n)
			}
			return "n/a"
		},
		"barWidth": func(pct float64) string {
			return fmt.Sprintf("%.0f%%", core.Clamp(pct))
		},
		"tierColor": func(pct float64) string {
			return core.TierOf(pct).Color()
		},
		"tierName": func(pct float64) string {
			return core.TierOf(pct).String()
		},
	}
}

// render executes a named template into a buffer first so a failing
// template never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		InternalServerError("Something went wrong while rendering this page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fragment renders a named template to a string for HTMX responses.
func (s *Server) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// navItem is one entry of the main navigation.
type navItem struct {
	Path  string
	Label string
}

var navigation = []navItem{
	{Path: "/", Label: "Dashboard"},
	{Path: "/transactions", Label: "Transactions"},
	{Path: "/budget", Label: "Budget"},
	{Path: "/savings", Label: "Savings Goals"},
	{Path: "/reports", Label: "Reports"},
	{Path: "/settings", Label: "Settings"},
}

// page is the data every full-page template receives.
type page struct {
	Title    string
	Active   string
	User     string
	DarkMode bool
	Nav      []navItem
	Content  any
}

// renderScreen renders a guarded full page for the session in r.
func (s *Server) renderScreen(w http.ResponseWriter, r *http.Request, name, title string, content any) {
	ws := workspaceFrom(r.Context())
	s.render(w, r, http.StatusOK, name, page{
		Title:    title,
		Active:   r.URL.Path,
		User:     ws.Owner,
		DarkMode: ws.Settings().DarkMode,
		Nav:      navigation,
		Content:  content,
	})
}
