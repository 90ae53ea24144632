// Package history persists completed and in-progress workout sessions
// to a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Session is one workout session, open until EndedAt is set.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Workout   string     `json:"workout"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// DB wraps the history database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dir/history.db and
// applies pending migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// RecordStart inserts an open session and returns its ID.
func (d *DB) RecordStart(ctx context.Context, workout string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sessions (id, workout, started_at) VALUES (?, ?, ?)`,
		id.String(), workout, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

// RecordEnd closes an open session. Ending an already-closed or unknown
// session is a no-op.
func (d *DB) RecordEnd(ctx context.Context, id uuid.UUID) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

// ListSessions returns the most recent sessions, newest first.
func (d *DB) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, workout, started_at, ended_at FROM sessions
		 ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		var s Session
		var idStr string
		if err := rows.Scan(&idStr, &s.Workout, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parsing session id %q: %w", idStr, err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Close closes the history database.
func (d *DB) Close() error {
	return d.db.Close()
}
