// Package server serves the charts over HTTP as HTML pages, SVG images and
// JSON scenes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/render"
	"github.com/hitboard/hitboard/internal/scene"
	"github.com/hitboard/hitboard/internal/store"
)

// ShutdownTimeout bounds the graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// framer is implemented by charts that can be stepped frame by frame.
type framer interface {
	Frame(filter.State, int) (*scene.Scene, error)
}

// Server holds the charts and everything the handlers need. Charts are
// immutable after construction, so handlers recompute concurrently.
type Server struct {
	charts       map[string]scene.Chart
	names        []string
	options      *store.Options
	correlations []aggregate.FeatureCorrelation
	origins      []string
	metrics      *Metrics
	l            *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithOptions serves o on /api/options.
func WithOptions(o store.Options) Option {
	return func(s *Server) { s.options = &o }
}

// WithCorrelations serves rows on /api/correlations.
func WithCorrelations(rows []aggregate.FeatureCorrelation) Option {
	return func(s *Server) { s.correlations = rows }
}

// WithAllowedOrigins sets the CORS origins. Empty allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// New builds a server for charts. The first chart is the landing page.
func New(charts []scene.Chart, opts ...Option) *Server {
	s := &Server{
		charts:  make(map[string]scene.Chart, len(charts)),
		metrics: newMetrics(),
		l:       slog.Default().With(slog.String("module", "server")),
	}
	for _, c := range charts {
		s.charts[c.Name()] = c
		s.names = append(s.names, c.Name())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds every route to r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.index)
	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/charts/{chart}", s.page)

	r.Get("/api/charts", s.listCharts)
	r.Get("/api/charts/{chart}", s.sceneJSON)
	r.Get("/api/charts/{chart}/svg", s.sceneSVG)
	r.Get("/api/charts/{chart}/frames/{index}", s.frame)
	r.Get("/api/options", s.listOptions)
	r.Get("/api/correlations", s.listCorrelations)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.l.Info("listening", slog.String("addr", addr), slog.Any("charts", s.names))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.l.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if len(s.names) == 0 {
		http.Error(w, "no charts loaded", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/charts/"+s.names[0], http.StatusFound)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "charts": s.names})
}

func (s *Server) listCharts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.names)
}

func (s *Server) listOptions(w http.ResponseWriter, _ *http.Request) {
	if s.options == nil {
		writeError(w, http.StatusNotFound, errors.New("options index not loaded"))
		return
	}
	writeJSON(w, http.StatusOK, s.options)
}

// listCorrelations serves the platform/feature matrix, or with ?platform=
// the strongest n (default 5) features of one platform.
func (s *Server) listCorrelations(w http.ResponseWriter, r *http.Request) {
	rows := s.correlations
	if p := r.URL.Query().Get("platform"); p != "" {
		n := 5
		if v := r.URL.Query().Get("n"); v != "" {
			var err error
			if n, err = strconv.Atoi(v); err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("%w: n must be a non-negative integer", ErrBadQuery))
				return
			}
		}
		rows = aggregate.Strongest(rows, p, n)
	}
	if rows == nil {
		rows = []aggregate.FeatureCorrelation{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) sceneJSON(w http.ResponseWriter, r *http.Request) {
	sc, status, err := s.render(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) sceneSVG(w http.ResponseWriter, r *http.Request) {
	sc, status, err := s.render(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.SVG(w, sc); err != nil {
		s.l.Warn("write svg", slog.String("error", err.Error()))
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	sc, status, err := s.render(r)
	if err != nil {
		writeHTML(w, status, render.GenerateErrorHTML(err))
		return
	}
	out, err := render.GenerateHTML(sc, render.HTMLOptions{Interactive: true, Nav: s.nav()})
	if err != nil {
		writeHTML(w, http.StatusInternalServerError, render.GenerateErrorHTML(err))
		return
	}
	writeHTML(w, http.StatusOK, out)
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) {
	c, ok := s.charts[chi.URLParam(r, "chart")]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown chart %q", chi.URLParam(r, "chart")))
		return
	}
	f, ok := c.(framer)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("chart %q has no frames", c.Name()))
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: frame index must be an integer", ErrBadQuery))
		return
	}
	state, err := StateFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sc, err := s.observe(c, func() (*scene.Scene, error) { return f.Frame(state, i) })
	if errors.Is(err, filter.ErrEmptyResult) {
		cw, ch := c.Size()
		sc, err = scene.Empty(c.Name(), cw, ch, state, err), nil
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.frameTick.Inc()
	writeJSON(w, http.StatusOK, sc)
}

// render recomputes the chart named in the URL with the state from the
// query string. The returned status applies when err is non-nil.
func (s *Server) render(r *http.Request) (*scene.Scene, int, error) {
	name := chi.URLParam(r, "chart")
	c, ok := s.charts[name]
	if !ok {
		return nil, http.StatusNotFound, fmt.Errorf("unknown chart %q", name)
	}
	state, err := StateFromQuery(r.URL.Query())
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	sc, err := s.observe(c, func() (*scene.Scene, error) { return scene.Render(c, state) })
	switch {
	case errors.Is(err, scene.ErrUnknownFeature):
		return nil, http.StatusBadRequest, err
	case err != nil:
		s.l.Error("recompute failed", slog.String("chart", name), slog.String("error", err.Error()))
		return nil, http.StatusInternalServerError, err
	}
	return sc, http.StatusOK, nil
}

// observe times one recompute and counts its outcome.
func (s *Server) observe(c scene.Chart, fn func() (*scene.Scene, error)) (*scene.Scene, error) {
	timer := prometheus.NewTimer(s.metrics.duration.WithLabelValues(c.Name()))
	sc, err := fn()
	timer.ObserveDuration()

	switch {
	case err != nil && !errors.Is(err, filter.ErrEmptyResult):
		s.metrics.failures.WithLabelValues(c.Name()).Inc()
	case errors.Is(err, filter.ErrEmptyResult) || (sc != nil && sc.Message != ""):
		s.metrics.empty.WithLabelValues(c.Name()).Inc()
	}
	return sc, err
}

func (s *Server) nav() []render.NavLink {
	links := make([]render.NavLink, len(s.names))
	for i, n := range s.names {
		links[i] = render.NavLink{Name: strings.ToUpper(n[:1]) + n[1:], Href: "/charts/" + n}
	}
	return links
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.l.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Default().Warn("encode response", slog.String("module", "server"), slog.String("error", err.Error()))
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeHTML(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}
