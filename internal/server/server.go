// Package server wires the JSON API handlers into an http.Server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dblive/internal/config"
	"dblive/internal/geocode"
	"dblive/internal/handler"
	"dblive/internal/poller"
	"dblive/internal/storage"
)

// Server is the HTTP server for the delay tracker API.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, db *storage.DB, sched *poller.Scheduler, geo *geocode.Client, loc *time.Location, logger *slog.Logger) *Server {
	h := handler.New(db, sched, geo, loc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/routes", h.Routes)
	mux.HandleFunc("GET /api/routes/{id}/stats", h.RouteStats)
	mux.HandleFunc("GET /api/routes/{id}/stats/combined", h.CombinedRouteStats)
	mux.HandleFunc("GET /api/polling/status", h.PollingStatus)
	mux.HandleFunc("POST /api/polling/run", h.PollingRun)
	mux.HandleFunc("GET /api/departures", h.Departures)

	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      withMiddleware(mux, logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the server's fully wrapped handler stack.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server starting", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting new requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
