package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/repository"
)

// BookService handles the catalog's business rules.
//
// EXACT-MATCH POLICY:
// Titles and author names are compared byte-for-byte throughout — the
// duplicate check, update/delete addressing, and author listing all use
// exact equality. No trimming, no case folding: "Herbert" and "herbert"
// are different authors as far as this catalog is concerned.
type BookService struct {
	books  repository.BookRepository
	logger *slog.Logger
}

// NewBookService creates a BookService.
func NewBookService(books repository.BookRepository, logger *slog.Logger) *BookService {
	return &BookService{
		books:  books,
		logger: logger,
	}
}

// validateBook enforces the field rules shared by Add and Update.
//
// The HTTP handler already validates the payload schema before calling the
// service, but these rules belong to the domain, not to HTTP — any other
// caller (a future CLI importer, a seed script) gets the same protection.
func validateBook(book *model.Book) error {
	if book.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if book.Author == "" {
		return apperror.ValidationFailed("author", "author is required")
	}
	if book.Pages < 1 {
		return apperror.ValidationFailed("pages", "pages must be at least 1")
	}
	return nil
}

// Add creates a new book.
//
// Returns a conflict error if a book with the same (title, author) pair
// already exists. The check-then-insert here is not atomic, so the schema's
// UNIQUE(title, author) constraint is the real guarantee — if a concurrent
// Add wins the race, repo.Create reports the same conflict.
func (s *BookService) Add(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := validateBook(book); err != nil {
		return nil, err
	}

	_, err := s.books.GetByTitleAuthor(ctx, book.Title, book.Author)
	switch {
	case err == nil:
		return nil, apperror.Conflict("a book with this title and author already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking for duplicate book: %w", err)
	}

	if err := s.books.Create(ctx, book); err != nil {
		s.logger.Error("failed to create book",
			slog.String("title", book.Title),
			slog.String("author", book.Author),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating book: %w", err)
	}

	s.logger.Info("book added",
		slog.Int64("id", book.ID),
		slog.String("title", book.Title),
		slog.String("author", book.Author),
	)

	return book, nil
}

// ByAuthor returns all books with exactly this author name.
// An unknown author is not an error — the result is just empty.
func (s *BookService) ByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	books, err := s.books.ListByAuthor(ctx, author)
	if err != nil {
		s.logger.Error("failed to list books",
			slog.String("author", author),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing books by author: %w", err)
	}
	return books, nil
}

// Authors returns the distinct author names in the catalog.
func (s *BookService) Authors(ctx context.Context) ([]string, error) {
	authors, err := s.books.ListAuthors(ctx)
	if err != nil {
		s.logger.Error("failed to list authors", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	return authors, nil
}

// Update overwrites pages, image, and author_image of the book addressed by
// (title, author). Those two fields are the book's identity and never change.
//
// STRATEGY: update-then-fetch. The repository's UPDATE reports not-found via
// RowsAffected, and we read the row back so the caller gets the canonical
// record including its ID.
func (s *BookService) Update(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := s.books.Update(ctx, book); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update book",
			slog.String("title", book.Title),
			slog.String("author", book.Author),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating book: %w", err)
	}

	updated, err := s.books.GetByTitleAuthor(ctx, book.Title, book.Author)
	if err != nil {
		return nil, fmt.Errorf("reading back updated book: %w", err)
	}

	s.logger.Info("book updated",
		slog.Int64("id", updated.ID),
		slog.String("title", updated.Title),
		slog.String("author", updated.Author),
	)

	return updated, nil
}

// Delete removes the book addressed by (title, author).
// Returns apperror.ErrNotFound if no such book exists.
func (s *BookService) Delete(ctx context.Context, title, author string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if author == "" {
		return apperror.ValidationFailed("author", "author is required")
	}

	if err := s.books.Delete(ctx, title, author); err != nil {
		return err
	}

	s.logger.Info("book deleted",
		slog.String("title", title),
		slog.String("author", author),
	)
	return nil
}
