package handler

import (
	"context"
	"database/sql"
	"net/http"

	"dblive/internal/geocode"
	"dblive/internal/storage"
)

type routeJSON struct {
	ID         int64    `json:"id"`
	OriginName string   `json:"origin_name"`
	DestName   string   `json:"dest_name"`
	OriginEva  string   `json:"origin_eva"`
	DestEva    string   `json:"dest_eva"`
	OriginLat  *float64 `json:"origin_lat"`
	OriginLon  *float64 `json:"origin_lon"`
	DestLat    *float64 `json:"dest_lat"`
	DestLon    *float64 `json:"dest_lon"`
}

// Routes lists all tracked routes for the map view. Routes missing
// coordinates are geocoded on the way out and the result is persisted,
// so the first request after a new route appears fills them in.
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.db.ListRoutes(ctx)
	if err != nil {
		h.logger.Error("listing routes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load routes")
		return
	}

	routes := make([]routeJSON, 0, len(list))
	for _, rt := range list {
		h.ensureCoords(ctx, &rt)
		routes = append(routes, routeJSON{
			ID:         rt.ID,
			OriginName: rt.OriginName,
			DestName:   rt.DestName,
			OriginEva:  rt.OriginEva,
			DestEva:    rt.DestEva,
			OriginLat:  nullFloat(rt.OriginLat),
			OriginLon:  nullFloat(rt.OriginLon),
			DestLat:    nullFloat(rt.DestLat),
			DestLon:    nullFloat(rt.DestLon),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

// ensureCoords fills in missing station coordinates via geocoding.
// Failures leave the coordinates null; the next request tries again.
func (h *Handler) ensureCoords(ctx context.Context, rt *storage.Route) {
	if h.geo == nil {
		return
	}
	if !rt.OriginLat.Valid || !rt.OriginLon.Valid {
		if res := h.lookupStation(ctx, rt.OriginName); res != nil {
			rt.OriginLat = sql.NullFloat64{Float64: res.Lat, Valid: true}
			rt.OriginLon = sql.NullFloat64{Float64: res.Lon, Valid: true}
			if err := h.db.SetRouteOriginCoords(ctx, rt.ID, res.Lat, res.Lon); err != nil {
				h.logger.Warn("persisting coordinates", "route", rt.ID, "error", err)
			}
		}
	}
	if !rt.DestLat.Valid || !rt.DestLon.Valid {
		if res := h.lookupStation(ctx, rt.DestName); res != nil {
			rt.DestLat = sql.NullFloat64{Float64: res.Lat, Valid: true}
			rt.DestLon = sql.NullFloat64{Float64: res.Lon, Valid: true}
			if err := h.db.SetRouteDestCoords(ctx, rt.ID, res.Lat, res.Lon); err != nil {
				h.logger.Warn("persisting coordinates", "route", rt.ID, "error", err)
			}
		}
	}
}

func (h *Handler) lookupStation(ctx context.Context, name string) *geocode.Result {
	res, err := h.geo.StationCoords(ctx, name)
	if err != nil {
		h.logger.Warn("geocoding failed", "station", name, "error", err)
		return nil
	}
	return res
}
