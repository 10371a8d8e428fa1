package iris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrStationNotFound is returned when a station name matches nothing.
var ErrStationNotFound = errors.New("station not found")

const stationCacheTTL = 24 * time.Hour

// StationCacheStore is the persistent tier of the station cache. Station
// lists are stored as JSON keyed by the normalized search pattern.
type StationCacheStore interface {
	CachedStations(ctx context.Context, pattern string) (string, bool, error)
	StoreCachedStations(ctx context.Context, pattern, stationsJSON string) error
}

// Resolver resolves human readable station names to stations with EVA
// numbers. Lookups go through an in-memory cache, then the persistent
// cache, and only then hit the API.
type Resolver struct {
	client *Client
	store  StationCacheStore // may be nil
	cache  *stationCache
	logger *slog.Logger
}

// NewResolver returns a resolver backed by client. store may be nil to
// run without the persistent cache tier.
func NewResolver(client *Client, store StationCacheStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		client: client,
		store:  store,
		cache:  newStationCache(stationCacheTTL),
		logger: logger,
	}
}

// Resolve finds the station for a configured name. An exact
// case-insensitive name match is preferred; otherwise the first
// candidate the API returned wins.
func (r *Resolver) Resolve(ctx context.Context, name string) (Station, error) {
	pattern := strings.ToLower(strings.TrimSpace(name))
	if pattern == "" {
		return Station{}, fmt.Errorf("%w: empty name", ErrStationNotFound)
	}

	candidates, err := r.search(ctx, pattern)
	if err != nil {
		return Station{}, err
	}
	if len(candidates) == 0 {
		return Station{}, fmt.Errorf("%w: %q", ErrStationNotFound, name)
	}
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return candidates[0], nil
}

func (r *Resolver) search(ctx context.Context, pattern string) ([]Station, error) {
	if stations, ok := r.cache.get(pattern); ok {
		return stations, nil
	}

	if r.store != nil {
		raw, ok, err := r.store.CachedStations(ctx, pattern)
		if err != nil {
			r.logger.Warn("station cache read failed", "pattern", pattern, "error", err)
		} else if ok {
			var stations []Station
			if err := json.Unmarshal([]byte(raw), &stations); err == nil {
				r.cache.set(pattern, stations)
				return stations, nil
			}
			r.logger.Warn("station cache entry unparseable, refetching", "pattern", pattern)
		}
	}

	stations, err := r.client.StationSearch(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("station search %q: %w", pattern, err)
	}

	r.cache.set(pattern, stations)
	if r.store != nil {
		raw, err := json.Marshal(stations)
		if err == nil {
			if err := r.store.StoreCachedStations(ctx, pattern, string(raw)); err != nil {
				r.logger.Warn("station cache write failed", "pattern", pattern, "error", err)
			}
		}
	}
	return stations, nil
}
