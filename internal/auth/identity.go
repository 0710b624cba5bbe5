// Package auth — identity-cookie resolution.
//
// HOW IDENTITY WORKS IN THIS APP:
// Login sets a cookie named "user" whose value is the account's raw login
// string. On every protected request the middleware reads that cookie and
// looks the login up in the database. That's the whole scheme.
//
// THIS IS NOT A SECURITY TOKEN — AND THAT IS THE POINT OF THIS WARNING:
// The cookie is unsigned and carries no proof of possession. Anyone who can
// send a request can set `Cookie: user=anna` and the server will treat them
// as anna. There is no MAC, no expiry, and no server-side session table.
// A real deployment must replace this with a signed token (claims + MAC) or
// an opaque random session ID stored server-side. The cookie VALUE being the
// raw login is part of this application's external contract, so the flaw is
// documented here rather than silently fixed.
//
// What we DO harden: the cookie is HttpOnly (JavaScript can't read it) and
// SameSite=Lax (not sent on cross-site POSTs). Neither changes the value
// semantics above.
package auth

import (
	"context"
	"net/http"

	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/repository"
)

// IdentityCookieName is the cookie carrying the logged-in user's login.
const IdentityCookieName = "user"

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue takes `any` as the key. With a plain string key, any
// package that knows the string could read or shadow the value. A
// package-private key type makes collisions impossible: only this package
// can create a contextKey.
type contextKey string

const userKey contextKey = "user"

// unauthenticatedBody matches the JSON error shape produced by the handler
// package. Written as a literal here so the middleware doesn't depend on
// handler (which would be an import cycle).
const unauthenticatedBody = `{"error":"unauthenticated","message":"authentication required"}`

// RequireUser is a middleware that resolves the identity cookie on protected
// routes.
//
// Resolution:
//  1. No "user" cookie           → 401
//  2. Cookie names an unknown login → 401, with the IDENTICAL body
//  3. Known login                → the *model.User goes into the request
//     context and the chain continues
//
// Cases 1 and 2 are indistinguishable from outside by design: a different
// response for "login exists but you're not it" would let anyone enumerate
// accounts by cycling cookie values.
func RequireUser(users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, users)
			if err != nil {
				// Not http.Error — that would stamp text/plain over the
				// JSON content type.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(unauthenticatedBody))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Returns (nil, false) on anonymous requests. On routes behind RequireUser
// it always returns (user, true).
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// SetIdentityCookie marks the response as logged in as the given login.
// Called by the login handler after the password check succeeds.
func SetIdentityCookie(w http.ResponseWriter, login string) {
	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookieName,
		Value:    login,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearIdentityCookie tells the browser to delete the identity cookie.
// MaxAge: -1 means "expire immediately".
func ClearIdentityCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// resolveUser reads the identity cookie and looks up the account.
func resolveUser(r *http.Request, users repository.UserRepository) (*model.User, error) {
	cookie, err := r.Cookie(IdentityCookieName)
	if err != nil {
		// http.ErrNoCookie — the request is anonymous
		return nil, err
	}

	return users.GetByLogin(r.Context(), cookie.Value)
}
