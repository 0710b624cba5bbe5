// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. A book catalog
// served by one process is exactly the workload it's made for, and tests can run
// against ":memory:" with zero setup.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// UNIT OF WORK:
// sql.DB is a connection pool, not a single connection. Every query a handler
// runs goes through db.QueryContext/ExecContext with the request's context, so
// each request borrows a pooled connection for the duration of its statement
// and releases it when the rows are closed — on every exit path.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite". After this, sql.Open("sqlite", ...) works.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements both repository.UserRepository and repository.BookRepository.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection and ensures the schema exists.
//
// dbPath examples:
//   - "data/catalog.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (great for tests, lost on close)
//
// sql.Open() does NOT actually open a connection — it just creates a pool
// manager. We call Ping() to force an immediate connection so a bad path or
// permission problem surfaces here, not on the first query.
//
// Schema creation runs here, once, before the server starts accepting
// requests. Every statement is CREATE ... IF NOT EXISTS, so New is safe to
// call against an existing database file.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: ensuring schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
// Wherever you call New(), defer Close() — it flushes the WAL and releases
// the file lock even if the server shuts down abnormally.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ensureSchema creates the tables if they don't exist yet.
//
// UNIQUE(title, author) ON books:
// The application also checks for duplicates before inserting (to produce a
// friendly error message), but a check-then-insert pair is not atomic — two
// concurrent adds of the same book could both pass the check. The constraint
// is the real guarantee: the race loser fails the INSERT, and Create
// translates that failure into the same conflict error.
func (db *DB) ensureSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			login         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			title        TEXT NOT NULL,
			author       TEXT NOT NULL,
			pages        INTEGER NOT NULL,
			image        TEXT NOT NULL DEFAULT '',
			author_image TEXT NOT NULL DEFAULT '',
			UNIQUE(title, author)
		);
		CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
	`)
	if err != nil {
		return fmt.Errorf("creating books table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
//
// database/sql has no portable error code for this, and modernc.org/sqlite
// surfaces constraint failures with the SQLite message text, e.g.
// "constraint failed: UNIQUE constraint failed: books.title, books.author".
// Matching on the message is the pragmatic check for a single-driver app.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
