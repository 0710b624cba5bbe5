package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/handler"
	"github.com/sakif/bookshelf/internal/model"
)

const duneJSON = `{"title":"Dune","author":"Herbert","pages":412}`

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func getByAuthor(t *testing.T, env *testEnv, author string) []model.Book {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/books/"+author, nil)
	req.SetPathValue("author", author)
	rr := httptest.NewRecorder()
	env.books.HandleByAuthor(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var books []model.Book
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&books))
	return books
}

// =========================================================================
// ADD + FETCH
// =========================================================================

func TestHandleAdd_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rr := postJSON(t, env.books.HandleAdd, "/books/", duneJSON)
	assert.Equal(t, http.StatusOK, rr.Code)

	var created model.Book
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Dune", created.Title)

	books := getByAuthor(t, env, "Herbert")
	if assert.Len(t, books, 1) {
		assert.Equal(t, 412, books[0].Pages)
	}
}

func TestHandleAdd_DuplicateIs400(t *testing.T) {
	env := newTestEnv(t)

	first := postJSON(t, env.books.HandleAdd, "/books/", duneJSON)
	assert.Equal(t, http.StatusOK, first.Code)

	// Different pages/image — still the same (title, author) pair.
	second := postJSON(t, env.books.HandleAdd, "/books/",
		`{"title":"Dune","author":"Herbert","pages":999,"image":"/other.jpg"}`)
	assert.Equal(t, http.StatusBadRequest, second.Code)

	var res handler.ErrorResponse
	assert.NoError(t, json.NewDecoder(second.Body).Decode(&res))
	assert.Equal(t, "conflict", res.Error)
}

func TestHandleAdd_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero pages", `{"title":"Dune","author":"Herbert","pages":0}`},
		{"negative pages", `{"title":"Dune","author":"Herbert","pages":-3}`},
		{"missing title", `{"author":"Herbert","pages":412}`},
		{"missing author", `{"title":"Dune","pages":412}`},
		{"not JSON", `this is not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rr := postJSON(t, env.books.HandleAdd, "/books/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var res handler.ErrorResponse
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
			assert.Equal(t, "validation_error", res.Error)

			// Nothing reached the database.
			assert.Empty(t, getByAuthor(t, env, "Herbert"))
		})
	}
}

func TestHandleByAuthor_UnknownAuthorIsEmptyList(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/books/Nobody", nil)
	req.SetPathValue("author", "Nobody")
	rr := httptest.NewRecorder()
	env.books.HandleByAuthor(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// Must be a JSON array, not null.
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

// =========================================================================
// UPDATE
// =========================================================================

func TestHandleUpdate(t *testing.T) {
	env := newTestEnv(t)
	postJSON(t, env.books.HandleAdd, "/books/", duneJSON)

	req := httptest.NewRequest(http.MethodPut, "/books/",
		strings.NewReader(`{"title":"Dune","author":"Herbert","pages":896,"image":"/img/new.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.books.HandleUpdate(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var updated model.Book
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, 896, updated.Pages)
	assert.Equal(t, "/img/new.jpg", updated.Image)
	// Identity fields unchanged.
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Herbert", updated.Author)
}

func TestHandleUpdate_MissingBookIs404(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPut, "/books/", strings.NewReader(duneJSON))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.books.HandleUpdate(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var res handler.ErrorResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "not_found", res.Error)
}

// =========================================================================
// DELETE
// =========================================================================

func deleteBook(t *testing.T, env *testEnv, title, author string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete,
		"/books/?title="+title+"&author="+author, nil)
	rr := httptest.NewRecorder()
	env.books.HandleDelete(rr, req)
	return rr
}

func TestHandleDelete(t *testing.T) {
	env := newTestEnv(t)
	postJSON(t, env.books.HandleAdd, "/books/", duneJSON)

	rr := deleteBook(t, env, "Dune", "Herbert")
	assert.Equal(t, http.StatusOK, rr.Code)

	var res handler.MessageResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "book deleted", res.Message)

	// Gone from a subsequent fetch.
	assert.Empty(t, getByAuthor(t, env, "Herbert"))
}

func TestHandleDelete_MissingBookIs404(t *testing.T) {
	env := newTestEnv(t)

	rr := deleteBook(t, env, "Missing", "Nobody")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// =========================================================================
// HTML PAGES + PROTECTED ROUTING
// =========================================================================

func TestHandleAuthorPage(t *testing.T) {
	env := newTestEnv(t)
	postJSON(t, env.books.HandleAdd, "/books/", duneJSON)

	req := httptest.NewRequest(http.MethodGet, "/html/Herbert", nil)
	req.SetPathValue("author", "Herbert")
	rr := httptest.NewRecorder()
	env.pages.HandleAuthorPage(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Herbert")
	assert.Contains(t, rr.Body.String(), "Dune")
}

// newProtectedRouter mirrors the server's protected-route wiring so the
// 401 behavior is tested through the real middleware chain.
func newProtectedRouter(env *testEnv) *chi.Mux {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(env.db))
		r.Get("/", env.pages.HandleHome)
		r.Post("/books/", env.books.HandleAdd)
		r.Put("/books/", env.books.HandleUpdate)
		r.Delete("/books/", env.books.HandleDelete)
	})
	return r
}

func TestProtectedRoutes_NoCookieIs401(t *testing.T) {
	env := newTestEnv(t)
	router := newProtectedRouter(env)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRequest(http.MethodPost, "/books/", strings.NewReader(duneJSON)),
		httptest.NewRequest(http.MethodPut, "/books/", strings.NewReader(duneJSON)),
		httptest.NewRequest(http.MethodDelete, "/books/?title=Dune&author=Herbert", nil),
	}

	for _, req := range requests {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equalf(t, http.StatusUnauthorized, rr.Code,
			"%s %s without a cookie", req.Method, req.URL.Path)
	}
}

func TestProtectedRoutes_UnknownLoginIs401(t *testing.T) {
	env := newTestEnv(t)
	router := newProtectedRouter(env)

	req := httptest.NewRequest(http.MethodPost, "/books/", strings.NewReader(duneJSON))
	req.AddCookie(&http.Cookie{Name: auth.IdentityCookieName, Value: "nobody"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHomePage_WithIdentityCookie(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "anna", "secret")
	postJSON(t, env.books.HandleAdd, "/books/", duneJSON)

	router := newProtectedRouter(env)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.IdentityCookieName, Value: "anna"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "anna")
	assert.Contains(t, rr.Body.String(), "Herbert")
}
