// Package poller periodically fetches recent departures for configured
// routes and stores them for delay statistics.
package poller

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dblive/internal/iris"
	"dblive/internal/route"
	"dblive/internal/storage"
)

// StationResolver resolves a configured station name to a station.
type StationResolver interface {
	Resolve(ctx context.Context, name string) (iris.Station, error)
}

// DepartureSource fetches direct departures between two stations.
type DepartureSource interface {
	DirectDepartures(ctx context.Context, origin, dest iris.Station, from, to time.Time) ([]iris.Departure, error)
}

// Store persists routes and their departures.
type Store interface {
	UpsertRoute(ctx context.Context, r storage.Route) (int64, error)
	UpsertDeparture(ctx context.Context, d storage.Departure) (bool, error)
}

// RouteError is one route's failure within a cycle.
type RouteError struct {
	Route string `json:"route"`
	Cause string `json:"cause"`
}

// Summary describes one completed poll cycle.
type Summary struct {
	CycleID          string       `json:"cycle_id"`
	Started          time.Time    `json:"started"`
	DurationMS       int64        `json:"duration_ms"`
	RoutesAttempted  int          `json:"routes_attempted"`
	RoutesSucceeded  int          `json:"routes_succeeded"`
	DeparturesStored int          `json:"departures_stored"`
	Errors           []RouteError `json:"errors"`
}

// Runner executes poll cycles. Each cycle looks a fixed window into the
// past: delays only settle once trains have actually left, so polling
// departures that already happened yields stable delay values.
type Runner struct {
	resolver StationResolver
	source   DepartureSource
	store    Store
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewRunner returns a runner that polls the given window into the past.
func NewRunner(resolver StationResolver, source DepartureSource, store Store, window time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		resolver: resolver,
		source:   source,
		store:    store,
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

// RunCycle polls every route once. A failing route is reported in the
// summary and does not stop the others.
func (r *Runner) RunCycle(ctx context.Context, routes []route.Descriptor) Summary {
	summary := Summary{
		CycleID:         uuid.NewString(),
		Started:         r.now(),
		RoutesAttempted: len(routes),
		Errors:          []RouteError{},
	}
	logger := r.logger.With("cycle", summary.CycleID)
	logger.Info("poll cycle started", "routes", len(routes))

	for _, rt := range routes {
		stored, err := r.pollRoute(ctx, rt)
		summary.DeparturesStored += stored
		if err != nil {
			summary.Errors = append(summary.Errors, RouteError{
				Route: rt.Origin + " -> " + rt.Destination,
				Cause: err.Error(),
			})
			logger.Error("route poll failed",
				"origin", rt.Origin, "destination", rt.Destination, "error", err)
			continue
		}
		summary.RoutesSucceeded++
	}

	elapsed := r.now().Sub(summary.Started)
	summary.DurationMS = elapsed.Milliseconds()
	logger.Info("poll cycle finished",
		"succeeded", summary.RoutesSucceeded,
		"attempted", summary.RoutesAttempted,
		"stored", summary.DeparturesStored,
		"duration", elapsed)
	return summary
}

// pollRoute fetches one route's recent departures and upserts them,
// returning how many rows were newly created.
func (r *Runner) pollRoute(ctx context.Context, rt route.Descriptor) (int, error) {
	origin, err := r.resolver.Resolve(ctx, rt.Origin)
	if err != nil {
		return 0, fmt.Errorf("resolve origin %q: %w", rt.Origin, err)
	}
	dest, err := r.resolver.Resolve(ctx, rt.Destination)
	if err != nil {
		return 0, fmt.Errorf("resolve destination %q: %w", rt.Destination, err)
	}

	now := r.now()
	departures, err := r.source.DirectDepartures(ctx, origin, dest, now.Add(-r.window), now)
	if err != nil {
		return 0, err
	}
	if len(departures) == 0 {
		r.logger.Debug("no direct departures in window",
			"origin", origin.Name, "destination", dest.Name)
		return 0, nil
	}

	routeID, err := r.store.UpsertRoute(ctx, storage.Route{
		OriginName: origin.Name,
		DestName:   dest.Name,
		OriginEva:  origin.EVA,
		DestEva:    dest.EVA,
	})
	if err != nil {
		return 0, fmt.Errorf("upsert route: %w", err)
	}

	created := 0
	for _, d := range departures {
		ok, err := r.store.UpsertDeparture(ctx, departureRecord(routeID, d))
		if err != nil {
			return created, fmt.Errorf("upsert departure %s: %w", d.ServiceID, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func departureRecord(routeID int64, d iris.Departure) storage.Departure {
	rec := storage.Departure{
		RouteID:   routeID,
		ServiceID: d.ServiceID,
		PlannedAt: d.Planned,
	}
	setNullString(&rec.Category, d.Category)
	setNullString(&rec.Number, d.Number)
	setNullString(&rec.PlannedPlatform, d.PlannedPlatform)
	setNullString(&rec.RealtimePlatform, d.RealtimePlatform)
	setNullString(&rec.Status, d.Status)
	if delay, ok := d.DelayMinutes(); ok {
		rec.RealtimeAt = sql.NullTime{Time: d.Realtime, Valid: true}
		rec.DelayMin = sql.NullInt64{Int64: int64(delay), Valid: true}
	}
	return rec
}

func setNullString(dst *sql.NullString, v string) {
	if v != "" {
		*dst = sql.NullString{String: v, Valid: true}
	}
}
