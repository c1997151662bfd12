// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite — a pure-Go translation of SQLite, so the
// binary builds without CGo. sql.DB is a connection pool and is safe for
// concurrent use; one *DB is created at startup and shared by every request.
//
// The store carries the system's only concurrency-correctness mechanisms: the
// unique index on users.email, the single-row-per-user github_tokens table,
// and the composite primary key on deployments. Application code above this
// layer does plain check-then-act and relies on these constraints.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the connection pool and implements every repository interface.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write; foreign keys are off by
	// default in SQLite and must be enabled per connection.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports store connectivity for the health endpoint.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_connected INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login    DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One token row per user — the primary key is the upsert key.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS github_tokens (
			user_id      TEXT PRIMARY KEY REFERENCES users(id),
			access_token TEXT NOT NULL,
			token_type   TEXT NOT NULL DEFAULT 'bearer',
			scope        TEXT NOT NULL DEFAULT '',
			login        TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating github_tokens table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS portfolios (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id),
			name          TEXT NOT NULL,
			template      TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'draft',
			url           TEXT NOT NULL DEFAULT '',
			github_repo   TEXT NOT NULL DEFAULT '',
			data          TEXT NOT NULL DEFAULT '',
			html          TEXT NOT NULL DEFAULT '',
			settings      TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_deployed DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating portfolios table: %w", err)
	}

	// One record per (user, repo) pair.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS deployments (
			user_id     TEXT NOT NULL REFERENCES users(id),
			repo        TEXT NOT NULL,
			branch      TEXT NOT NULL DEFAULT 'main',
			url         TEXT NOT NULL DEFAULT '',
			last_commit TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, repo)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating deployments table: %w", err)
	}

	return nil
}

// isUniqueViolation detects a UNIQUE constraint failure from the driver.
// modernc.org/sqlite exposes no typed error for it, so we match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
