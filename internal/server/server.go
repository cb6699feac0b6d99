// Package server is the annotation server: marker CRUD, memories, the
// rendered map page, visibility reports and the LED memory trigger.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mapmarks/overlay/internal/cache"
	"github.com/mapmarks/overlay/internal/logging"
	"github.com/mapmarks/overlay/internal/metrics"
	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/internal/web"
)

// Config holds server configuration.
type Config struct {
	Addr      string
	StaticDir string // serves wasm_exec.js and overlay.wasm under /static
	AllowAll  bool   // allow all CORS origins (dev mode)
	Page      web.PageOptions
}

// Server wires the HTTP API to a storage backend.
type Server struct {
	cfg        Config
	store      storage.Backend
	telemetry  []storage.VisibilityRecorder
	visible    *cache.VisibleSet
	trigger    cache.OneShot[[]byte]
	hub        *Hub
	log        *slog.Logger
	rec        *metrics.Recorder
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. Every recorder receives each visibility report.
func New(cfg Config, store storage.Backend, log *slog.Logger, rec *metrics.Recorder, telemetry ...storage.VisibilityRecorder) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		store:     store,
		telemetry: telemetry,
		visible:   cache.NewVisibleSet(),
		hub:       NewHub(log),
		log:       log,
		rec:       rec,
	}
	s.router = s.buildRouter()
	return s
}

// requestLogAttrs tags every record logged while serving r with its request id.
func requestLogAttrs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", middleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogAttrs)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// the websocket stays open, so it is mounted outside the timeout group
	r.Get("/ws/visible", s.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		s.registerRoutes(r)
	})

	if s.cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}
	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("markerd listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and disconnects subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
