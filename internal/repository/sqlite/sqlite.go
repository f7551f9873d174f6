// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure-Go translation of the SQLite C code — no CGo,
// no C compiler, works everywhere Go works. The database lives in a single
// file (or ":memory:" for tests).
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/nbarreto/gamereel/internal/apperror"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all of them keeps wiring simple: the server
// hands the same *DB to each service under a different interface type.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies the pragmas a web server needs, and runs
// migrations.
//
// WAL mode allows concurrent reads while a write is in flight — without it,
// SQLite locks the whole file per write. Foreign keys are off by default in
// SQLite; we rely on them for the review-deletion cascades, so they must be
// switched on per connection.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: the pragmas below are per-connection, and SQLite
	// serializes writers regardless. This also keeps ":memory:" databases
	// from splitting into one empty database per pooled connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

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

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// The toggle tables (likes, reposts, follows, saved_games) each carry a
// composite UNIQUE index. Concurrent toggles race on that constraint, not on
// application locks: the loser gets a constraint violation, which the
// service maps to the definitive current state.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			photo_url     TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Game cache keyed by the catalog's own ID; no AUTOINCREMENT.
		CREATE TABLE IF NOT EXISTS games (
			id             INTEGER PRIMARY KEY,
			name           TEXT NOT NULL,
			summary        TEXT NOT NULL DEFAULT '',
			rating         REAL,
			cover_url      TEXT NOT NULL DEFAULT '',
			release_date   TEXT NOT NULL DEFAULT '',
			platforms      TEXT NOT NULL DEFAULT '[]',
			artwork_urls   TEXT NOT NULL DEFAULT '[]',
			last_refreshed DATETIME NOT NULL,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			game_id    INTEGER NOT NULL REFERENCES games(id),
			body       TEXT NOT NULL DEFAULT '',
			gif_url    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_reviews_game_id ON reviews(game_id);
		CREATE INDEX IF NOT EXISTS idx_reviews_user_id ON reviews(user_id);
		CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);

		CREATE TABLE IF NOT EXISTS reposts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			review_id  INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			body       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, review_id)
		);
		CREATE INDEX IF NOT EXISTS idx_reposts_created_at ON reposts(created_at);

		CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			review_id  INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			parent_id  INTEGER REFERENCES comments(id) ON DELETE SET NULL,
			body       TEXT NOT NULL DEFAULT '',
			gif_url    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_review_id ON comments(review_id);
		CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id);

		CREATE TABLE IF NOT EXISTS likes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			review_id  INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, review_id)
		);

		CREATE TABLE IF NOT EXISTS follows (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			follower_id  INTEGER NOT NULL REFERENCES users(id),
			following_id INTEGER NOT NULL REFERENCES users(id),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (follower_id, following_id)
		);

		CREATE TABLE IF NOT EXISTS saved_games (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			game_id    INTEGER NOT NULL REFERENCES games(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, game_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as plain errors carrying the SQLite
// message, so string matching is the available detection.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// conflictIfUnique translates a unique violation into the domain Conflict
// error and wraps anything else.
func conflictIfUnique(err error, message, wrap string) error {
	if isUniqueViolation(err) {
		return apperror.Conflict(message)
	}
	return fmt.Errorf("%s: %w", wrap, err)
}

// placeholders returns "?, ?, ?" for n parameters — used by the IN (...)
// batch queries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args widens an ID slice to the []any that database/sql expects.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
