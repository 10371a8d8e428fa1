package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Route is a directed origin/destination pair departures are tracked for.
type Route struct {
	ID         int64
	OriginName string
	DestName   string
	OriginEva  string
	DestEva    string
	OriginLat  sql.NullFloat64
	OriginLon  sql.NullFloat64
	DestLat    sql.NullFloat64
	DestLon    sql.NullFloat64
}

// Departure is one observed train run on a route. Realtime fields are
// null until an update for the run has been seen.
type Departure struct {
	ID               int64
	RouteID          int64
	ServiceID        string
	Category         sql.NullString
	Number           sql.NullString
	PlannedAt        time.Time
	RealtimeAt       sql.NullTime
	DelayMin         sql.NullInt64
	PlannedPlatform  sql.NullString
	RealtimePlatform sql.NullString
	Status           sql.NullString
	InsertedAt       time.Time
}

// DepartureWithRoute joins a departure with its route's station names.
type DepartureWithRoute struct {
	Departure
	OriginName string
	DestName   string
}

const routeColumns = `id, origin_name, dest_name, origin_eva, dest_eva, origin_lat, origin_lon, dest_lat, dest_lon`

// UpsertRoute returns the id of the route with the given EVA pair,
// creating it first if it doesn't exist yet.
func (db *DB) UpsertRoute(ctx context.Context, r Route) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM routes WHERE origin_eva = ? AND dest_eva = ?`,
		r.OriginEva, r.DestEva).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup route: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO routes (origin_name, dest_name, origin_eva, dest_eva) VALUES (?, ?, ?, ?)`,
		r.OriginName, r.DestName, r.OriginEva, r.DestEva)
	if err != nil {
		return 0, fmt.Errorf("insert route: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert route: %w", err)
	}
	return id, nil
}

// RouteByID returns a single route.
func (db *DB) RouteByID(ctx context.Context, id int64) (Route, bool, error) {
	return db.routeBy(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id)
}

// RouteByEvas returns the route with the given directed EVA pair. This is
// how the reverse direction of a route is looked up.
func (db *DB) RouteByEvas(ctx context.Context, originEva, destEva string) (Route, bool, error) {
	return db.routeBy(ctx,
		`SELECT `+routeColumns+` FROM routes WHERE origin_eva = ? AND dest_eva = ?`,
		originEva, destEva)
}

func (db *DB) routeBy(ctx context.Context, query string, args ...any) (Route, bool, error) {
	var r Route
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&r.ID, &r.OriginName, &r.DestName, &r.OriginEva, &r.DestEva,
		&r.OriginLat, &r.OriginLon, &r.DestLat, &r.DestLon)
	if err == sql.ErrNoRows {
		return Route{}, false, nil
	}
	if err != nil {
		return Route{}, false, fmt.Errorf("query route: %w", err)
	}
	return r, true, nil
}

// ListRoutes returns all known routes ordered by station names.
func (db *DB) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+routeColumns+` FROM routes ORDER BY origin_name, dest_name`)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(
			&r.ID, &r.OriginName, &r.DestName, &r.OriginEva, &r.DestEva,
			&r.OriginLat, &r.OriginLon, &r.DestLat, &r.DestLon); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// SetRouteOriginCoords stores geocoded coordinates for a route's origin.
func (db *DB) SetRouteOriginCoords(ctx context.Context, id int64, lat, lon float64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE routes SET origin_lat = ?, origin_lon = ? WHERE id = ?`, lat, lon, id)
	if err != nil {
		return fmt.Errorf("update route coords: %w", err)
	}
	return nil
}

// SetRouteDestCoords stores geocoded coordinates for a route's destination.
func (db *DB) SetRouteDestCoords(ctx context.Context, id int64, lat, lon float64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE routes SET dest_lat = ?, dest_lon = ? WHERE id = ?`, lat, lon, id)
	if err != nil {
		return fmt.Errorf("update route coords: %w", err)
	}
	return nil
}

// UpsertDeparture inserts a departure or, when the same run was already
// seen by an earlier poll, refreshes its realtime fields. It reports
// whether a new row was created.
func (db *DB) UpsertDeparture(ctx context.Context, d Departure) (bool, error) {
	planned := db.formatTime(d.PlannedAt)
	realtime := db.nullTimeParam(d.RealtimeAt)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM departures WHERE route_id = ? AND service_id = ? AND planned_dt = ?`,
		d.RouteID, d.ServiceID, planned).Scan(&id)

	created := false
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO departures
				(route_id, service_id, category, number, planned_dt,
				 realtime_dt, delay_min, planned_platform, realtime_platform, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.RouteID, d.ServiceID, d.Category, d.Number, planned,
			realtime, d.DelayMin, d.PlannedPlatform, d.RealtimePlatform, d.Status)
		if err != nil {
			return false, fmt.Errorf("insert departure: %w", err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("lookup departure: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE departures
			 SET realtime_dt = ?, delay_min = ?, realtime_platform = ?, status = ?
			 WHERE id = ?`,
			realtime, d.DelayMin, d.RealtimePlatform, d.Status, id)
		if err != nil {
			return false, fmt.Errorf("update departure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit upsert: %w", err)
	}
	return created, nil
}

// DeparturesFilter narrows down QueryDepartures. The zero value means
// all routes within the last 24 hours.
type DeparturesFilter struct {
	RouteID  int64 // 0 means all routes
	Since    int   // hours back from Now; ignored with AllTime or a date range
	AllTime  bool
	DateFrom string // YYYY-MM-DD, inclusive
	DateTo   string // YYYY-MM-DD, inclusive
	Query    string // matches train label, service id or platforms
	Limit    int
	Offset   int
	Now      time.Time
}

// QueryDepartures returns stored departures matching the filter, newest
// first, plus the total number of matches before limit and offset.
func (db *DB) QueryDepartures(ctx context.Context, f DeparturesFilter) ([]DepartureWithRoute, int, error) {
	where := []string{"1=1"}
	var args []any

	switch {
	case f.AllTime:
	case f.DateFrom != "" && f.DateTo != "":
		where = append(where, "DATE(d.planned_dt) BETWEEN ? AND ?")
		args = append(args, f.DateFrom, f.DateTo)
	case f.DateFrom != "":
		where = append(where, "DATE(d.planned_dt) >= ?")
		args = append(args, f.DateFrom)
	case f.DateTo != "":
		where = append(where, "DATE(d.planned_dt) <= ?")
		args = append(args, f.DateTo)
	default:
		hours := f.Since
		if hours <= 0 {
			hours = 24
		}
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		where = append(where, "d.planned_dt BETWEEN ? AND ?")
		args = append(args,
			db.formatTime(now.Add(-time.Duration(hours)*time.Hour)),
			db.formatTime(now))
	}

	if f.RouteID > 0 {
		where = append(where, "d.route_id = ?")
		args = append(args, f.RouteID)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		where = append(where, `(IFNULL(d.category,'') || ' ' || IFNULL(d.number,'') LIKE ?
			OR d.service_id LIKE ?
			OR IFNULL(d.planned_platform,'') LIKE ?
			OR IFNULL(d.realtime_platform,'') LIKE ?)`)
		args = append(args, like, like, like, like)
	}

	cond := strings.Join(where, " AND ")

	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM departures d WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count departures: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.route_id, d.service_id, d.category, d.number,
			d.planned_dt, d.realtime_dt, d.delay_min,
			d.planned_platform, d.realtime_platform, d.status, d.inserted_at,
			r.origin_name, r.dest_name
		FROM departures d
		JOIN routes r ON r.id = d.route_id
		WHERE `+cond+`
		ORDER BY COALESCE(d.realtime_dt, d.planned_dt) DESC
		LIMIT ? OFFSET ?`,
		append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query departures: %w", err)
	}
	defer rows.Close()

	var departures []DepartureWithRoute
	for rows.Next() {
		var (
			d                 DepartureWithRoute
			planned, inserted string
			realtime          sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.RouteID, &d.ServiceID, &d.Category, &d.Number,
			&planned, &realtime, &d.DelayMin,
			&d.PlannedPlatform, &d.RealtimePlatform, &d.Status, &inserted,
			&d.OriginName, &d.DestName); err != nil {
			return nil, 0, fmt.Errorf("scan departure: %w", err)
		}
		if d.PlannedAt, err = db.parseTime(planned); err != nil {
			return nil, 0, fmt.Errorf("scan departure: %w", err)
		}
		if d.InsertedAt, err = db.parseTime(inserted); err != nil {
			return nil, 0, fmt.Errorf("scan departure: %w", err)
		}
		if realtime.Valid {
			t, err := db.parseTime(realtime.String)
			if err != nil {
				return nil, 0, fmt.Errorf("scan departure: %w", err)
			}
			d.RealtimeAt = sql.NullTime{Time: t, Valid: true}
		}
		departures = append(departures, d)
	}
	return departures, total, rows.Err()
}

// DelayRow is one departure with a known delay, used as aggregation input.
type DelayRow struct {
	PlannedAt time.Time
	DelayMin  int
}

// DelayObservations returns all departures of a route that carry a
// realtime update, oldest first. Rows with an unknown delay say nothing
// about punctuality and are excluded.
func (db *DB) DelayObservations(ctx context.Context, routeID int64) ([]DelayRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT planned_dt, delay_min FROM departures
		 WHERE route_id = ? AND delay_min IS NOT NULL
		 ORDER BY planned_dt`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query delays: %w", err)
	}
	defer rows.Close()

	var observations []DelayRow
	for rows.Next() {
		var (
			planned string
			row     DelayRow
		)
		if err := rows.Scan(&planned, &row.DelayMin); err != nil {
			return nil, fmt.Errorf("scan delay: %w", err)
		}
		if row.PlannedAt, err = db.parseTime(planned); err != nil {
			return nil, fmt.Errorf("scan delay: %w", err)
		}
		observations = append(observations, row)
	}
	return observations, rows.Err()
}

// CachedStations returns the stored station list JSON for a search
// pattern, if any.
func (db *DB) CachedStations(ctx context.Context, pattern string) (string, bool, error) {
	var raw string
	err := db.QueryRowContext(ctx,
		`SELECT stations_json FROM station_cache WHERE search_pattern = ?`, pattern).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query station cache: %w", err)
	}
	return raw, true, nil
}

// StoreCachedStations saves a station list JSON for a search pattern,
// replacing any previous entry.
func (db *DB) StoreCachedStations(ctx context.Context, pattern, stationsJSON string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO station_cache (search_pattern, stations_json, cached_at)
		 VALUES (?, ?, datetime('now'))`, pattern, stationsJSON)
	if err != nil {
		return fmt.Errorf("store station cache: %w", err)
	}
	return nil
}

func (db *DB) nullTimeParam(t sql.NullTime) sql.NullString {
	if !t.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: db.formatTime(t.Time), Valid: true}
}
