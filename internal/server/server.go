// Package server exposes the enrichment streams and the save path over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/enrich"
	"github.com/sells-group/contact-enrich/internal/review"
	"github.com/sells-group/contact-enrich/internal/store"
	"github.com/sells-group/contact-enrich/internal/stream"
)

// Streams registers and drives enrichment streams.
type Streams interface {
	Create(spreadsheetIDs []string) *stream.Stream
	Run(ctx context.Context, id string, emit func(stream.Event) error) error
	Continue(id string) error
	Stop(id string) error
}

// Saver is the save path.
type Saver interface {
	Save(ctx context.Context, req review.Request) (*review.Result, error)
}

// ContactReader reads persisted contacts.
type ContactReader interface {
	GetContact(ctx context.Context, username string) (*store.ContactRecord, error)
}

// SpreadsheetLister lists the working folder.
type SpreadsheetLister interface {
	List(ctx context.Context) ([]enrich.SpreadsheetSummary, error)
}

// Deps are the handlers' collaborators.
type Deps struct {
	Streams      Streams
	Review       Saver
	Contacts     ContactReader
	Spreadsheets SpreadsheetLister
}

// Config tunes the HTTP surface.
type Config struct {
	AllowedOrigins []string
	// ImagesDir is served under ImagesPrefix when both are set.
	ImagesDir    string
	ImagesPrefix string
}

// Server holds the routes.
type Server struct {
	deps Deps
	cfg  Config
}

// New creates a Server.
func New(deps Deps, cfg Config) *Server {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{deps: deps, cfg: cfg}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/spreadsheets", s.handleListSpreadsheets)
		r.Post("/streams", s.handleCreateStream)
		r.Get("/streams/{id}/events", s.handleEvents)
		r.Post("/streams/{id}/continue", s.handleContinue)
		r.Post("/streams/{id}/stop", s.handleStop)
		r.Post("/rows/save", s.handleSave)
		r.Get("/contacts/{username}", s.handleGetContact)
	})

	if s.cfg.ImagesDir != "" && s.cfg.ImagesPrefix != "" {
		prefix := "/" + strings.Trim(s.cfg.ImagesPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(s.cfg.ImagesDir))))
	}
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
