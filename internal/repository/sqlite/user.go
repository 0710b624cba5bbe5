package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors right here instead of at
// some distant call site. Standard practice for interface implementations.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new account row.
//
// The ID is assigned by SQLite (INTEGER PRIMARY KEY AUTOINCREMENT) and read
// back via LastInsertId, so after CreateUser the caller's struct carries the
// generated key — the reason it takes a pointer.
//
// A duplicate login trips the UNIQUE constraint; we translate that into a
// conflict error so callers can distinguish "taken" from a real DB failure.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (login, password_hash) VALUES (?, ?)`,
		user.Login,
		user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a user with this login already exists")
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Login, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByLogin retrieves an account by exact login match.
// Returns apperror.ErrNotFound if no such login exists.
func (db *DB) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, login, password_hash FROM users WHERE login = ?`,
		login,
	).Scan(
		&u.ID,
		&u.Login,
		&u.PasswordHash,
	)
	if err != nil {
		// sql.ErrNoRows is a sentinel — database/sql doesn't wrap it,
		// so a plain == check is correct here.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", login)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", login, err)
	}

	return &u, nil
}
