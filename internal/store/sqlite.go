// Package store persists visitor analytics and server-side theme choices.
//
// SQLite (modernc.org/sqlite, no cgo) holds both; Redis can hold theme
// choices instead when several instances serve the same site.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps visitors and preferences in one database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and creates, with parent directories) the database
// at path and brings the schema up to date.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "store"))

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Visitor inserts come from request goroutines; one writer avoids
	// SQLITE_BUSY without retry loops.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME NOT NULL,
			country TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_visitors_timestamp
			ON visitors(timestamp);

		CREATE TABLE IF NOT EXISTS preferences (
			visitor_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (visitor_id, key)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// runMigrations upgrades databases created by older builds that stored raw
// IPs. Rows without a hash get a stable placeholder derived from their id.
func (s *SQLiteStore) runMigrations() error {
	var hasHash int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('visitors') WHERE name = 'hashed_ip'`,
	).Scan(&hasHash)
	if err != nil {
		return fmt.Errorf("inspecting visitors table: %w", err)
	}
	if hasHash == 0 {
		if _, err := s.db.Exec(`ALTER TABLE visitors ADD COLUMN hashed_ip TEXT`); err != nil {
			return fmt.Errorf("adding hashed_ip column: %w", err)
		}
	}

	res, err := s.db.Exec(
		`UPDATE visitors SET hashed_ip = printf('%016x', id * 12345) WHERE hashed_ip IS NULL OR hashed_ip = ''`,
	)
	if err != nil {
		return fmt.Errorf("backfilling hashed_ip: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("migrated visitor records to hashed IPs", zap.Int64("rows", n))
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func now() time.Time { return time.Now().UTC() }
