package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/service"
)

// validate is the shared validator instance. validator.New() builds a
// reflection cache of struct rules, so one instance is reused by all
// requests rather than rebuilt per call.
var validate = validator.New()

// bookPayload is the JSON schema for book create/update requests.
//
// The `validate` tags are the input contract:
//   - title and author are required
//   - pages is required and must be ≥ 1 ("required" alone would reject 0 as
//     the zero value; gte=1 also catches negatives with a clearer rule)
//   - image and author_image are optional
//
// The response body mirrors this shape (plus the generated id) — no field
// of a book is secret, so nothing is hidden on the way out.
type bookPayload struct {
	Title       string `json:"title"        validate:"required"`
	Author      string `json:"author"       validate:"required"`
	Pages       int    `json:"pages"        validate:"required,gte=1"`
	Image       string `json:"image"`
	AuthorImage string `json:"author_image"`
}

// decodeBookPayload parses and validates a book request body.
// Returns a domain validation error naming the first offending field, so
// the response goes through the same writeError mapping as everything else.
func decodeBookPayload(r *http.Request) (*bookPayload, error) {
	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid JSON body")
	}

	if err := validate.Struct(&payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, apperror.ValidationFailed(fe.Field(),
				fmt.Sprintf("field %q failed validation rule %q", fe.Field(), fe.Tag()))
		}
		return nil, apperror.ValidationFailed("body", "invalid book payload")
	}

	return &payload, nil
}

// toModel converts the validated payload into the domain struct.
func (p *bookPayload) toModel() *model.Book {
	return &model.Book{
		Title:       p.Title,
		Author:      p.Author,
		Pages:       p.Pages,
		Image:       p.Image,
		AuthorImage: p.AuthorImage,
	}
}

// BookHandler manages the JSON CRUD endpoints for catalog records.
type BookHandler struct {
	books  *service.BookService
	logger *slog.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(books *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, logger: logger}
}

// HandleAdd creates a new book.
//
// HTTP: POST /books/  (auth required)
// BODY: {"title":"Dune","author":"Herbert","pages":412,"image":"","author_image":""}
//
// 200 with the created book, 400 if the payload is invalid or a book with
// the same (title, author) already exists.
func (h *BookHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBookPayload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := h.books.Add(r.Context(), payload.toModel())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// HandleByAuthor returns all books by the given author.
//
// HTTP: GET /books/{author}  (public)
//
// The author segment is matched exactly against stored author names.
// No matches is still a 200 — the body is just an empty array.
func (h *BookHandler) HandleByAuthor(w http.ResponseWriter, r *http.Request) {
	author := r.PathValue("author")

	books, err := h.books.ByAuthor(r.Context(), author)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

// HandleUpdate overwrites the mutable fields of an existing book.
//
// HTTP: PUT /books/  (auth required)
//
// The body carries the full book schema; (title, author) addresses the
// record and pages/image/author_image replace the stored values.
// 404 if no book has that title and author.
func (h *BookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBookPayload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := h.books.Update(r.Context(), payload.toModel())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// HandleDelete removes a book.
//
// HTTP: DELETE /books/?title=...&author=...  (auth required)
//
// DELETE requests conventionally carry no body, so the book's key comes in
// as query parameters. 404 if no book matches.
func (h *BookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	author := r.URL.Query().Get("author")

	if err := h.books.Delete(r.Context(), title, author); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "book deleted"})
}
