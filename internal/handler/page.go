// Package handler contains the HTTP request handlers for the catalog.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (form values, JSON body, path params)
// 2. Call the service layer
// 3. Write the HTTP response (status code, JSON or rendered HTML)
//
// Handlers contain no business logic — they are the glue between HTTP and
// the services.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/service"
)

// PageHandler renders the server-side HTML pages.
//
// TEMPLATE COMPOSITION:
// base.html defines the page frame with a {{template "content" .}} slot;
// each page file fills it with {{define "content"}}...{{end}}. Because every
// page defines the same "content" block, each page gets its OWN template set
// (base + page) — parsing them all together would make the definitions
// collide. Templates are parsed once at startup, not per request.
type PageHandler struct {
	login  *template.Template
	home   *template.Template
	books  *template.Template
	svc    *service.BookService
	logger *slog.Logger
}

// NewPageHandler parses the HTML templates and creates a PageHandler.
func NewPageHandler(templateDir string, svc *service.BookService, logger *slog.Logger) (*PageHandler, error) {
	parse := func(page string) (*template.Template, error) {
		return template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page),
		)
	}

	login, err := parse("login.html")
	if err != nil {
		return nil, err
	}
	home, err := parse("home.html")
	if err != nil {
		return nil, err
	}
	books, err := parse("books.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		login:  login,
		home:   home,
		books:  books,
		svc:    svc,
		logger: logger,
	}, nil
}

// render executes a template set and handles the failure case in one place.
func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleLoginForm serves the login page.
//
// HTTP: GET /login  (public)
func (h *PageHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.RenderLogin(w, "")
}

// RenderLogin renders the login page, optionally with an inline error
// message. The login-submit handler reuses this to re-render the form when
// the credentials don't match — same page, same 200 status, plus the error.
func (h *PageHandler) RenderLogin(w http.ResponseWriter, errorMessage string) {
	h.render(w, h.login, map[string]any{
		"Title": "Sign in",
		"Error": errorMessage,
	})
}

// HandleHome serves the home page with the distinct list of authors.
//
// HTTP: GET /  (auth required — anonymous requests get 401 from the
// RequireUser middleware before this handler runs)
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireUser, but don't render without a user.
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	authors, err := h.svc.Authors(r.Context())
	if err != nil {
		h.logger.Error("failed to load authors", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, h.home, map[string]any{
		"Title":   "Catalog",
		"Login":   user.Login,
		"Authors": authors,
	})
}

// HandleAuthorPage serves the HTML listing of one author's books.
//
// HTTP: GET /html/{author}  (public)
//
// An author with no books renders the same page with an empty table.
func (h *PageHandler) HandleAuthorPage(w http.ResponseWriter, r *http.Request) {
	author := r.PathValue("author")

	books, err := h.svc.ByAuthor(r.Context(), author)
	if err != nil {
		h.logger.Error("failed to load books for page",
			slog.String("author", author),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, h.books, map[string]any{
		"Title":  author,
		"Author": author,
		"Books":  books,
	})
}
