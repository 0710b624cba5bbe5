package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/repository"
)

// compile-time check that *DB implements repository.BookRepository
var _ repository.BookRepository = (*DB)(nil)

// bookKey formats the (title, author) pair for error messages.
func bookKey(title, author string) string {
	return fmt.Sprintf("%q by %q", title, author)
}

// Create inserts a new book.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// Never build SQL with string concatenation — titles and author names are
// user input. The driver escapes placeholder values, which closes the SQL
// injection hole.
//
// The UNIQUE(title, author) constraint backs up the service layer's
// duplicate check: if two concurrent adds race past the check, the second
// INSERT fails here and is reported as the same conflict.
func (db *DB) Create(ctx context.Context, book *model.Book) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO books (title, author, pages, image, author_image)
		 VALUES (?, ?, ?, ?, ?)`,
		book.Title,
		book.Author,
		book.Pages,
		book.Image,
		book.AuthorImage,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a book with this title and author already exists")
		}
		return fmt.Errorf("sqlite: creating book %s: %w", bookKey(book.Title, book.Author), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new book id: %w", err)
	}
	book.ID = id

	return nil
}

// GetByTitleAuthor retrieves the book with exactly this title and author.
// Returns apperror.ErrNotFound if no row matches.
func (db *DB) GetByTitleAuthor(ctx context.Context, title, author string) (*model.Book, error) {
	var b model.Book

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, author, pages, image, author_image
		 FROM books
		 WHERE title = ? AND author = ?`,
		title, author,
	).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Pages,
		&b.Image,
		&b.AuthorImage,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("book", bookKey(title, author))
		}
		return nil, fmt.Errorf("sqlite: getting book %s: %w", bookKey(title, author), err)
	}

	return &b, nil
}

// ListByAuthor returns every book whose author matches exactly.
// An author with no books yields an empty (non-nil) slice, not an error —
// the endpoint's contract is "possibly empty list".
func (db *DB) ListByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, author, pages, image, author_image
		 FROM books
		 WHERE author = ?
		 ORDER BY title`,
		author,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing books by author %q: %w", author, err)
	}
	// sql.Rows holds a pooled connection — forgetting Close leaks it.
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Pages, &b.Image, &b.AuthorImage,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning book row: %w", err)
		}
		books = append(books, b)
	}

	// rows.Err() catches failures that happened DURING iteration
	// (e.g. the connection dropping mid-query).
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating books: %w", err)
	}

	return books, nil
}

// ListAuthors returns the distinct author names across all books.
// SELECT DISTINCT deduplicates by exact string equality, matching the
// catalog's everywhere-exact comparison rule. Sorted for stable pages;
// callers must not rely on the order.
func (db *DB) ListAuthors(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT author FROM books ORDER BY author`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing authors: %w", err)
	}
	defer rows.Close()

	authors := make([]string, 0)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("sqlite: scanning author row: %w", err)
		}
		authors = append(authors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating authors: %w", err)
	}

	return authors, nil
}

// Update overwrites the mutable fields (pages, image, author_image) of the
// book addressed by (title, author). Title and author are the book's
// identity and are never changed.
//
// RowsAffected distinguishes "no such book" from success in a single
// statement — cheaper than SELECT-then-UPDATE.
func (db *DB) Update(ctx context.Context, book *model.Book) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE books
		 SET pages = ?, image = ?, author_image = ?
		 WHERE title = ? AND author = ?`,
		book.Pages,
		book.Image,
		book.AuthorImage,
		book.Title,
		book.Author,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating book %s: %w", bookKey(book.Title, book.Author), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("book", bookKey(book.Title, book.Author))
	}

	return nil
}

// Delete removes the book addressed by (title, author).
// Same RowsAffected pattern as Update for the not-found case.
func (db *DB) Delete(ctx context.Context, title, author string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM books WHERE title = ? AND author = ?`,
		title, author,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting book %s: %w", bookKey(title, author), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("book", bookKey(title, author))
	}

	return nil
}
