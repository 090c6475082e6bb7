package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"budget/internal/app"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	appweb "budget/web"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	templates *template.Template
	ctrl      *app.Controller
	ready     Pinger
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
}

type Option func(*Server)

// WithReadiness makes /readyz ping p.
func WithReadiness(p Pinger) Option {
	return func(s *Server) { s.ready = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(log.ComponentHTTP) }
}

// WithRateLimit caps writes per client per minute. Zero disables the limit.
func WithRateLimit(writesPerMinute int) Option {
	return func(s *Server) {
		if writesPerMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{WritesPerMinute: writesPerMinute})
		}
	}
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, ctrl *app.Controller, opts ...Option) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ctrl:   ctrl,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	r := mux.NewRouter()
	r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}/edit", s.handleEdit).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}/delete", s.handleDeleteForm).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}", s.handleDeleteAPI).Methods(http.MethodDelete)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", s.handleListAPI).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummaryAPI).Methods(http.MethodGet)
	api.HandleFunc("/chart", s.handleChartAPI).Methods(http.MethodGet)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	clientIP := security.NewClientIP()
	s.tracer = trace.NewMiddleware(clientIP.Extract)

	var h http.Handler = r
	if s.limiter != nil {
		h = s.limiter.Middleware(clientIP.Extract, s.handleRateLimited)(h)
	}
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = log.Middleware(s.logger)(h)
	s.Handler = h

	return s, nil
}

// Shutdown stops background helpers and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}

// Metrics returns request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}
