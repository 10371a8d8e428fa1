// Package handler implements the JSON API over routes, observed
// departures and delay statistics.
package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"dblive/internal/geocode"
	"dblive/internal/poller"
	"dblive/internal/storage"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	db     *storage.DB
	sched  *poller.Scheduler
	geo    *geocode.Client // nil disables coordinate lookups
	loc    *time.Location
	logger *slog.Logger
}

// New creates a Handler.
func New(db *storage.DB, sched *poller.Scheduler, geo *geocode.Client, loc *time.Location, logger *slog.Logger) *Handler {
	return &Handler{db: db, sched: sched, geo: geo, loc: loc, logger: logger}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTimeString(v sql.NullTime) *string {
	if !v.Valid {
		return nil
	}
	s := v.Time.Format(storage.TimeLayout)
	return &s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
