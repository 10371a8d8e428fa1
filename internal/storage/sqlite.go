// Package storage persists routes, observed departures and the station
// cache in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TimeLayout is how timestamps are stored and served. Values are local
// to the timetable's timezone so SQL date functions group by local hour
// and day.
const TimeLayout = "2006-01-02 15:04:05"

// DB wraps a SQLite database connection with delay-tracking operations.
type DB struct {
	*sql.DB
	loc    *time.Location
	logger *slog.Logger
}

// Open creates or opens a SQLite database at the given path and applies
// migrations. Timestamps are stored and read in loc.
func Open(path string, loc *time.Location, logger *slog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: sqlDB, loc: loc, logger: logger}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("database opened", "path", path)
	return db, nil
}

func (db *DB) formatTime(t time.Time) string {
	return t.In(db.loc).Format(TimeLayout)
}

func (db *DB) parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, db.loc)
}
