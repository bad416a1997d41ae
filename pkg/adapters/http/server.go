package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/novapay/internal/input"
	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/internal/presentation/graph"
	"github.com/aretw0/novapay/internal/redact"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/preferences"
	"github.com/aretw0/novapay/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the session API.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager
	Prefs    *preferences.Store

	redactor     *redact.Redactor
	logger       *slog.Logger
	titles       func(flow string) string
	metrics      http.Handler
	maxInputSize int
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager that is also registered as a
// session.StateObserver.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithPreferences serves and updates prefs under /preferences.
func WithPreferences(prefs *preferences.Store) Option {
	return func(s *Server) {
		s.Prefs = prefs
	}
}

// WithRedactor overrides the default payload redactor.
func WithRedactor(r *redact.Redactor) Option {
	return func(s *Server) {
		s.redactor = r
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTitles sets the display titles of flows.
func WithTitles(fn func(flow string) string) Option {
	return func(s *Server) {
		s.titles = fn
	}
}

// WithMetrics mounts h (usually promhttp.Handler()) on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize bounds submitted string values.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: mgr,
		redactor: redact.Default(),
		logger:   logging.NewNop(),
		titles:   func(flow string) string { return flow },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger, s.redactor)
	}
	if s.Prefs == nil {
		s.Prefs = preferences.NewStore(preferences.Default())
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.injectPreferences)

	r.Get("/health", s.GetHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.ListFlows)
		r.Get("/{flow}", s.GetFlow)
		r.Get("/{flow}/graph", s.GetFlowGraph)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/fields", s.SubmitFields)
			r.Post("/advance", s.Advance)
			r.Post("/retreat", s.Retreat)
			r.Post("/jump", s.JumpTo)
			r.Post("/reset", s.Reset)
			r.Post("/cancel", s.Cancel)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	r.Route("/preferences", func(r chi.Router) {
		r.Get("/", s.GetPreferences)
		r.Put("/", s.PutPreferences)
		r.Get("/events", s.SubscribePreferences)
	})
	return r
}

// injectPreferences carries the shared preferences store on every request context.
func (s *Server) injectPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(preferences.WithStore(r.Context(), s.Prefs)))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type flowSummary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Steps int    `json:"steps"`
}

type flowDetail struct {
	flowSummary
	Definition []domain.StepSpec `json:"definition"`
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	names := s.Sessions.Flows()
	out := make([]flowSummary, 0, len(names))
	for _, name := range names {
		ctrl, err := s.Sessions.Controller(name)
		if err != nil {
			continue
		}
		out = append(out, flowSummary{Name: name, Title: s.titles(name), Steps: ctrl.Definition().Len()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetFlow handles GET /flows/{flow}.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "flow")
	ctrl, err := s.Sessions.Controller(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	def := ctrl.Definition()
	writeJSON(w, http.StatusOK, flowDetail{
		flowSummary: flowSummary{Name: name, Title: s.titles(name), Steps: def.Len()},
		Definition:  def.Steps(),
	})
}

// GetFlowGraph handles GET /flows/{flow}/graph. With ?session=ID the
// session's progress is overlaid.
func (s *Server) GetFlowGraph(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.Sessions.Controller(chi.URLParam(r, "flow"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		state, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		overlay = graph.OverlayFromState(ctrl.Definition(), state)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(ctrl.Definition(), overlay)))
}

func prefsFrom(w http.ResponseWriter, r *http.Request) (*preferences.Store, bool) {
	prefs := preferences.FromContext(r.Context())
	if prefs == nil {
		writeProblem(w, http.StatusInternalServerError, "internal", "Preferences unavailable")
		return nil, false
	}
	return prefs, true
}

// GetPreferences handles GET /preferences.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, ok := prefsFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, prefs.Get())
}

// PutPreferences handles PUT /preferences. Omitted fields keep their value.
func (s *Server) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Authenticated    *bool   `json:"authenticated"`
		SidebarCollapsed *bool   `json:"sidebar_collapsed"`
		Theme            *string `json:"theme"`
	}
	store, ok := prefsFrom(w, r)
	if !ok {
		return
	}
	if !s.decode(w, r, &body) {
		return
	}
	prefs, err := store.Update(func(p *preferences.Preferences) {
		if body.Authenticated != nil {
			p.Authenticated = *body.Authenticated
		}
		if body.SidebarCollapsed != nil {
			p.SidebarCollapsed = *body.SidebarCollapsed
		}
		if body.Theme != nil {
			p.Theme = strings.ToLower(*body.Theme)
		}
	})
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_preferences", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeProblem(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return false
	}
	return true
}

func (s *Server) sanitizeFields(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			v = f
		}
		clean, err := input.Value(v, s.maxInputSize)
		if err != nil {
			return nil, errors.New(k + ": " + err.Error())
		}
		out[k] = clean
	}
	return out, nil
}
