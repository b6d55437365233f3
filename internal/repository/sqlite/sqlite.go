// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure-Go translation of SQLite: no CGo, no
// external database server, ":memory:" databases for tests. The store-level
// UNIQUE constraints on users.email and entrepreneurs.user_id are what
// enforce the uniqueness invariants; the service layer's existence checks
// only exist to produce friendlier error messages, the constraint is the
// authority.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It is constructed once in server wiring and closed on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens a SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/nexus.db": file-based, persistent
//   - ":memory:":      in-memory, used by the tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in flight;
	// without it SQLite locks the whole file per write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default for backwards compatibility.
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

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository view of the database.
func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// Entrepreneurs returns the entrepreneur repository view of the database.
func (db *DB) Entrepreneurs() *EntrepreneurDB {
	return &EntrepreneurDB{db: db}
}

// Contacts returns the contact-message repository view of the database.
func (db *DB) Contacts() *ContactDB {
	return &ContactDB{db: db}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run at every startup.
func (db *DB) migrate() error {
	// email is UNIQUE COLLATE NOCASE: "A@x.com" and "a@x.com" are the
	// same account, enforced by the store rather than by check-then-write.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL DEFAULT '',
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			google_id     TEXT NOT NULL DEFAULT '',
			has_profile   INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// user_id is UNIQUE: one profile per user, enforced by the store.
	// tags and portfolio are JSON text columns; tag filtering goes through
	// SQLite's json_each.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS entrepreneurs (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL UNIQUE REFERENCES users(id),
			profile_type  TEXT NOT NULL,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			company_name  TEXT NOT NULL DEFAULT '',
			activity_name TEXT NOT NULL DEFAULT '',
			logo          TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '[]',
			phone         TEXT NOT NULL DEFAULT '',
			whatsapp      TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			location      TEXT NOT NULL DEFAULT '',
			city          TEXT NOT NULL DEFAULT '',
			website       TEXT NOT NULL DEFAULT '',
			portfolio     TEXT NOT NULL DEFAULT '[]',
			rating        REAL NOT NULL DEFAULT 0,
			review_count  INTEGER NOT NULL DEFAULT 0,
			is_premium    INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entrepreneurs_location ON entrepreneurs(location);
		CREATE INDEX IF NOT EXISTS idx_entrepreneurs_city ON entrepreneurs(city);
		CREATE INDEX IF NOT EXISTS idx_entrepreneurs_profile_type ON entrepreneurs(profile_type);
		CREATE INDEX IF NOT EXISTS idx_entrepreneurs_rating ON entrepreneurs(rating);
		CREATE INDEX IF NOT EXISTS idx_entrepreneurs_created_at ON entrepreneurs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating entrepreneurs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS contact_messages (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			subject    TEXT NOT NULL,
			message    TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'new',
			created_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating contact_messages table: %w", err)
	}

	return nil
}

// Timestamps are stored as RFC 3339 UTC text and normalized exactly once,
// at this boundary. Nothing above the repository ever sees a string
// timestamp.
//
// The fractional seconds are zero-padded to a fixed width (RFC3339Nano
// trims trailing zeros, which breaks the lexicographic ordering that
// ORDER BY created_at relies on).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// isUniqueViolation reports whether err is a UNIQUE-constraint failure.
// The driver exposes no typed error for this, so the message is matched.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
