package handler_test

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/handler"
	"github.com/sakif/bookshelf/internal/repository/sqlite"
	"github.com/sakif/bookshelf/internal/service"
)

// testEnv bundles the handlers with the backing in-memory database so tests
// can exercise full request/response cycles without a running server.
type testEnv struct {
	db    *sqlite.DB
	auth  *handler.AuthHandler
	books *handler.BookHandler
	pages *handler.PageHandler
}

// minimal templates — enough for the page handlers to render something
// assertable without dragging the real web/ directory into the tests.
var testTemplates = map[string]string{
	"base.html":  `{{define "base"}}<html><body>{{template "content" .}}</body></html>{{end}}`,
	"login.html": `{{define "content"}}{{if .Error}}<p class="error">{{.Error}}</p>{{end}}<form method="post" action="/login"></form>{{end}}`,
	"home.html":  `{{define "content"}}<p>{{.Login}}</p>{{range .Authors}}<a href="/html/{{.}}">{{.}}</a>{{end}}{{end}}`,
	"books.html": `{{define "content"}}<h1>{{.Author}}</h1>{{range .Books}}<span>{{.Title}}</span>{{end}}{{end}}`,
}

// newTestEnv wires the real dependency graph — in-memory sqlite, services,
// handlers — the same way server.setupRoutes does, with a cheap bcrypt cost
// and templates written to a temp dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	templateDir := t.TempDir()
	for name, content := range testTemplates {
		if err := os.WriteFile(filepath.Join(templateDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test template %s: %v", name, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	passwords := auth.NewPasswordServiceForTest(4)
	authService := service.NewAuthService(db, passwords, logger)
	bookService := service.NewBookService(db, logger)

	pageHandler, err := handler.NewPageHandler(templateDir, bookService, logger)
	if err != nil {
		t.Fatalf("failed to create page handler: %v", err)
	}

	return &testEnv{
		db:    db,
		auth:  handler.NewAuthHandler(authService, pageHandler, logger),
		books: handler.NewBookHandler(bookService, logger),
		pages: pageHandler,
	}
}

// formBody encodes form fields the way a browser's POST does.
func formBody(fields map[string]string) *strings.Reader {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	return strings.NewReader(values.Encode())
}
