package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dblive/internal/storage"
)

type departureJSON struct {
	ID               int64   `json:"id"`
	RouteID          int64   `json:"route_id"`
	ServiceID        string  `json:"service_id"`
	Category         *string `json:"category"`
	Number           *string `json:"number"`
	PlannedDT        string  `json:"planned_dt"`
	RealtimeDT       *string `json:"realtime_dt"`
	DelayMin         *int64  `json:"delay_min"`
	PlannedPlatform  *string `json:"planned_platform"`
	RealtimePlatform *string `json:"realtime_platform"`
	Status           *string `json:"status"`
	InsertedAt       string  `json:"inserted_at"`
	OriginName       string  `json:"origin_name"`
	DestName         string  `json:"dest_name"`
}

type departuresMeta struct {
	SinceHours *int   `json:"since_hours"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	Count      int    `json:"count"`
	Total      int    `json:"total"`
	Now        string `json:"now"`
}

// Departures serves stored departures, newest first. Filters: route_id,
// since (hours back, default 24), all_time, date_from/date_to
// (YYYY-MM-DD), q (matches train label, service id or platform), limit
// and offset.
func (h *Handler) Departures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.DeparturesFilter{
		Query: q.Get("q"),
		Limit: 1000,
		Now:   time.Now(),
	}

	if raw := q.Get("route_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid route_id")
			return
		}
		filter.RouteID = id
	}

	var sinceParam *int
	if raw := q.Get("since"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 8760 {
			h.writeError(w, http.StatusBadRequest, "since must be between 1 and 8760 hours")
			return
		}
		sinceParam = &v
		filter.Since = v
	}

	if raw := q.Get("all_time"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid all_time flag")
			return
		}
		filter.AllTime = v
	}

	for _, p := range []struct {
		name  string
		field *string
	}{
		{"date_from", &filter.DateFrom},
		{"date_to", &filter.DateTo},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s, want YYYY-MM-DD", p.name))
			return
		}
		*p.field = raw
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 5000 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 5000")
			return
		}
		filter.Limit = v
	}
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = v
	}

	rows, total, err := h.db.QueryDepartures(r.Context(), filter)
	if err != nil {
		h.logger.Error("querying departures", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load departures")
		return
	}

	departures := make([]departureJSON, 0, len(rows))
	for _, row := range rows {
		departures = append(departures, departureJSON{
			ID:               row.ID,
			RouteID:          row.RouteID,
			ServiceID:        row.ServiceID,
			Category:         nullString(row.Category),
			Number:           nullString(row.Number),
			PlannedDT:        row.PlannedAt.Format(storage.TimeLayout),
			RealtimeDT:       nullTimeString(row.RealtimeAt),
			DelayMin:         nullInt(row.DelayMin),
			PlannedPlatform:  nullString(row.PlannedPlatform),
			RealtimePlatform: nullString(row.RealtimePlatform),
			Status:           nullString(row.Status),
			InsertedAt:       row.InsertedAt.Format(storage.TimeLayout),
			OriginName:       row.OriginName,
			DestName:         row.DestName,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"meta": departuresMeta{
			SinceHours: sinceParam,
			Limit:      filter.Limit,
			Offset:     filter.Offset,
			Count:      len(departures),
			Total:      total,
			Now:        time.Now().In(h.loc).Format(time.RFC3339),
		},
		"departures": departures,
	})
}
