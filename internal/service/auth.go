// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and return domain errors — no *http.Request in,
// no status codes out. The handler translates both directions. Services take
// repository INTERFACES, not *sqlite.DB, so tests can pass in-memory fakes
// and the storage backend can be swapped in one place (server.go).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/repository"
)

// AuthService handles registration and credential checks.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account with a hashed password.
//
// Returns a conflict error if the login is already taken. The login is
// compared exactly as given — no trimming, no case folding — so "Anna" and
// "anna" are distinct accounts.
//
// Note the pre-check AND the constraint: GetByLogin produces the friendly
// conflict message, and the UNIQUE constraint on users.login catches the
// race where two registrations of the same login pass the check together
// (the repository reports that as the same conflict).
func (s *AuthService) Register(ctx context.Context, login, password string) (*model.User, error) {
	if login == "" {
		return nil, apperror.ValidationFailed("login", "login is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	_, err := s.users.GetByLogin(ctx, login)
	switch {
	case err == nil:
		return nil, apperror.Conflict("a user with this login already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking login availability: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		// The error from Hash never contains the plaintext.
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Login:        login,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("id", user.ID),
		slog.String("login", user.Login),
	)

	return user, nil
}

// Login verifies a login/password pair and returns the matching account.
//
// Unknown login and wrong password both come back as ErrUnauthenticated —
// the login form shows one generic message either way, and the service
// must not reveal which half of the pair was wrong.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated()
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("failed login attempt", slog.String("login", login))
		return nil, apperror.Unauthenticated()
	}

	return user, nil
}
