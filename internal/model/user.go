// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// Identity is login + password: users register with a login and a password,
// and the password is stored only as a bcrypt hash (see internal/auth).
//
// WHY PasswordHash HAS `json:"-"`?
// The hash must never leave the server. The `json:"-"` tag tells encoding/json
// to skip the field entirely, so even if a handler accidentally encodes a
// *model.User straight into a response, the hash stays out of the payload.
//
// WHY Login IS CASE-SENSITIVE?
// Lookups compare logins byte-for-byte ("Anna" and "anna" are two different
// accounts). The UNIQUE constraint on the login column enforces the same rule
// in the database.
type User struct {
	ID           int64  `json:"id"    db:"id"`
	Login        string `json:"login" db:"login"`
	PasswordHash string `json:"-"     db:"password_hash"`
}
