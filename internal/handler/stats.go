package handler

import (
	"net/http"
	"strconv"

	"dblive/internal/stats"
	"dblive/internal/storage"
)

// hourStatsJSON is one hour-of-day row of the boxplot payload. The chart
// expects all 24 hours present, empty ones with null statistics.
type hourStatsJSON struct {
	Hour   int   `json:"hour"`
	Delays []int `json:"delays"`
	Count  int   `json:"count"`
	stats.Distribution
}

type dayStatsJSON struct {
	Day     int    `json:"day"`
	DayName string `json:"day_name"`
	Delays  []int  `json:"delays"`
	Count   int    `json:"count"`
	stats.Distribution
}

type routeStatsJSON struct {
	RouteID        int64           `json:"route_id"`
	OriginName     string          `json:"origin_name"`
	DestName       string          `json:"dest_name"`
	ReverseRouteID *int64          `json:"reverse_route_id,omitempty"`
	HourlyStats    []hourStatsJSON `json:"hourly_stats"`
	DailyStats     []dayStatsJSON  `json:"daily_stats"`
	DayHourStats   [][]stats.Cell  `json:"day_hour_stats,omitempty"`
	Summary        stats.Summary   `json:"summary"`
}

// RouteStats serves the delay distributions of a single route.
// Query parameters: threshold (minutes still counted on time, default 0)
// and matrix (include day_hour_stats, default true).
func (h *Handler) RouteStats(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.routeFromPath(w, r)
	if !ok {
		return
	}
	opts, includeMatrix, ok := h.statsParams(w, r)
	if !ok {
		return
	}

	observations, err := h.delayObservations(w, r, rt.ID)
	if err != nil {
		return
	}

	result := stats.Aggregate(observations, opts)
	h.writeJSON(w, http.StatusOK, statsResponse(rt, result, includeMatrix, nil))
}

// CombinedRouteStats serves statistics over both directions of a route.
// The reverse direction is looked up by the swapped EVA pair; when no
// reverse route exists the response covers the single direction only.
func (h *Handler) CombinedRouteStats(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.routeFromPath(w, r)
	if !ok {
		return
	}
	opts, includeMatrix, ok := h.statsParams(w, r)
	if !ok {
		return
	}

	observations, err := h.delayObservations(w, r, rt.ID)
	if err != nil {
		return
	}
	result := stats.Aggregate(observations, opts)

	var reverseID *int64
	reverse, found, err := h.db.RouteByEvas(r.Context(), rt.DestEva, rt.OriginEva)
	if err != nil {
		h.logger.Error("looking up reverse route", "route", rt.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load statistics")
		return
	}
	if found && reverse.ID != rt.ID {
		reverseObs, err := h.delayObservations(w, r, reverse.ID)
		if err != nil {
			return
		}
		result = stats.Combine(result, stats.Aggregate(reverseObs, opts))
		reverseID = &reverse.ID
	}

	h.writeJSON(w, http.StatusOK, statsResponse(rt, result, includeMatrix, reverseID))
}

func (h *Handler) routeFromPath(w http.ResponseWriter, r *http.Request) (storage.Route, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid route id")
		return storage.Route{}, false
	}
	rt, found, err := h.db.RouteByID(r.Context(), id)
	if err != nil {
		h.logger.Error("loading route", "route", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load route")
		return storage.Route{}, false
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "Route not found")
		return storage.Route{}, false
	}
	return rt, true
}

func (h *Handler) statsParams(w http.ResponseWriter, r *http.Request) (opts stats.Options, includeMatrix, ok bool) {
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid threshold")
			return opts, false, false
		}
		opts.OnTimeThreshold = v
	}
	includeMatrix = true
	if raw := r.URL.Query().Get("matrix"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid matrix flag")
			return opts, false, false
		}
		includeMatrix = v
	}
	return opts, includeMatrix, true
}

func (h *Handler) delayObservations(w http.ResponseWriter, r *http.Request, routeID int64) ([]stats.Observation, error) {
	rows, err := h.db.DelayObservations(r.Context(), routeID)
	if err != nil {
		h.logger.Error("loading delays", "route", routeID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load statistics")
		return nil, err
	}
	observations := make([]stats.Observation, len(rows))
	for i, row := range rows {
		observations[i] = stats.Observation{Planned: row.PlannedAt, Delay: row.DelayMin}
	}
	return observations, nil
}

func statsResponse(rt storage.Route, result stats.Result, includeMatrix bool, reverseID *int64) routeStatsJSON {
	resp := routeStatsJSON{
		RouteID:        rt.ID,
		OriginName:     rt.OriginName,
		DestName:       rt.DestName,
		ReverseRouteID: reverseID,
		HourlyStats:    denseHourly(result.Hourly),
		DailyStats:     denseDaily(result.Daily),
		Summary:        result.Summary,
	}
	if includeMatrix {
		resp.DayHourStats = result.Matrix
	}
	return resp
}

func denseHourly(buckets []stats.HourlyBucket) []hourStatsJSON {
	rows := make([]hourStatsJSON, 24)
	for hour := range rows {
		rows[hour] = hourStatsJSON{Hour: hour, Delays: []int{}}
	}
	for _, b := range buckets {
		rows[b.Hour] = hourStatsJSON{
			Hour:         b.Hour,
			Delays:       b.Delays,
			Count:        b.Count,
			Distribution: stats.Describe(b.Delays),
		}
	}
	return rows
}

func denseDaily(buckets []stats.DailyBucket) []dayStatsJSON {
	rows := make([]dayStatsJSON, 7)
	for day := range rows {
		rows[day] = dayStatsJSON{Day: day, DayName: stats.DayName(day), Delays: []int{}}
	}
	for _, b := range buckets {
		rows[b.Day] = dayStatsJSON{
			Day:          b.Day,
			DayName:      b.DayName,
			Delays:       b.Delays,
			Count:        b.Count,
			Distribution: stats.Describe(b.Delays),
		}
	}
	return rows
}
