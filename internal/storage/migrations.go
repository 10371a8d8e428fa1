package storage

import "fmt"

// migrate creates the schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Directed routes between two stations
	`CREATE TABLE IF NOT EXISTS routes (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		origin_name TEXT NOT NULL,
		dest_name   TEXT NOT NULL,
		origin_eva  TEXT NOT NULL,
		dest_eva    TEXT NOT NULL,
		origin_lat  REAL,
		origin_lon  REAL,
		dest_lat    REAL,
		dest_lon    REAL,
		created_at  TEXT NOT NULL DEFAULT (datetime('now')),
		UNIQUE(origin_eva, dest_eva)
	)`,

	// Observed departures, one row per train run on a route
	`CREATE TABLE IF NOT EXISTS departures (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id          INTEGER NOT NULL REFERENCES routes(id),
		service_id        TEXT NOT NULL,
		category          TEXT,
		number            TEXT,
		planned_dt        TEXT NOT NULL,
		realtime_dt       TEXT,
		delay_min         INTEGER,
		planned_platform  TEXT,
		realtime_platform TEXT,
		status            TEXT,
		inserted_at       TEXT NOT NULL DEFAULT (datetime('now')),
		UNIQUE(route_id, service_id, planned_dt)
	)`,

	// Persistent station lookup cache
	`CREATE TABLE IF NOT EXISTS station_cache (
		search_pattern TEXT PRIMARY KEY,
		stations_json  TEXT NOT NULL,
		cached_at      TEXT NOT NULL DEFAULT (datetime('now'))
	)`,

	// Indexes for common query patterns
	`CREATE INDEX IF NOT EXISTS idx_departures_route ON departures(route_id, planned_dt)`,
	`CREATE INDEX IF NOT EXISTS idx_departures_planned ON departures(planned_dt)`,
}
