package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/service"
)

// AuthHandler manages registration, login, and logout.
//
// It holds the PageHandler so the login-submit route can re-render the form
// with an inline error — the one place where a failure comes back as HTML
// instead of the standard JSON error body.
type AuthHandler struct {
	auth   *service.AuthService
	pages  *PageHandler
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, pages *PageHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		pages:  pages,
		logger: logger,
	}
}

// HandleRegister creates a new account.
//
// HTTP: POST /register  (public)
// BODY: form fields `login` and `password`
//
// 200 with {"message": ...} on success; 400 if the login is already taken
// or a field is missing.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid form body"))
		return
	}

	login := r.PostFormValue("login")
	password := r.PostFormValue("password")

	if _, err := h.auth.Register(r.Context(), login, password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "user created"})
}

// HandleLogin verifies the submitted credentials.
//
// HTTP: POST /login  (public)
// BODY: form fields `login` and `password`
//
// Success: set the identity cookie to the login and redirect to the home
// page (302). Failure: re-render the login page with an inline error — the
// status stays 200 and no cookie is set. Both failure modes (unknown login,
// wrong password) show the same message.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.RenderLogin(w, "invalid login or password")
		return
	}

	login := r.PostFormValue("login")
	password := r.PostFormValue("password")

	user, err := h.auth.Login(r.Context(), login, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthenticated) {
			h.pages.RenderLogin(w, "invalid login or password")
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	auth.SetIdentityCookie(w, user.Login)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout clears the identity cookie and sends the browser back to the
// login page.
//
// HTTP: GET /logout  (public — logging out twice is harmless)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearIdentityCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
