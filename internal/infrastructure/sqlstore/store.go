package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the structured store behind the catalog, preferences and matches.
// The same SQL runs on SQLite and PostgreSQL; placeholders are written as
// `?` and rebound for postgres.
type Store struct {
	db     *sql.DB
	driver string
	logger logrus.FieldLogger
	now    func() time.Time
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, driver, dsn string, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer at a time; also keeps ":memory:" on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	return New(db, driver, logger), nil
}

// New wraps an existing connection pool
func New(db *sql.DB, driver string, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		db:     db,
		driver: driver,
		logger: logger.WithField("component", "sqlstore"),
		now:    time.Now,
	}
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS universities (
		seq INTEGER PRIMARY KEY,
		university_id TEXT NOT NULL DEFAULT '',
		university_name TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		program_level TEXT NOT NULL DEFAULT '',
		course TEXT NOT NULL DEFAULT '',
		tuition_fee_annual TEXT NOT NULL DEFAULT '',
		living_cost_annual TEXT NOT NULL DEFAULT '',
		total_estimated_cost TEXT NOT NULL DEFAULT '',
		scholarships TEXT NOT NULL DEFAULT '',
		intl_services TEXT NOT NULL DEFAULT '',
		official_website TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_universities_country ON universities(country)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id TEXT PRIMARY KEY,
		countries TEXT NOT NULL DEFAULT '[]',
		study_level TEXT NOT NULL DEFAULT '',
		stream TEXT NOT NULL DEFAULT '',
		budget_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		budget_max DOUBLE PRECISION NOT NULL DEFAULT 0,
		needs_scholarship BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS university_matches (
		user_id TEXT NOT NULL,
		university_key TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		university_json TEXT NOT NULL,
		match_score DOUBLE PRECISION NOT NULL,
		match_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, university_key)
	)`,
	`CREATE TABLE IF NOT EXISTS user_university_flags (
		user_id TEXT NOT NULL,
		university_key TEXT NOT NULL,
		is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
		is_shortlisted BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, university_key)
	)`,
}

// Migrate creates the tables and indexes if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	s.logger.WithField("driver", s.driver).Info("database schema ready")
	return nil
}

// rebind rewrites `?` placeholders as `$1, $2, ...` for postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timestamp formats t for the TEXT timestamp columns
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// withTx runs fn inside a transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
