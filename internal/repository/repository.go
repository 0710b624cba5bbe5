package repository

import (
	"context"

	"github.com/sakif/bookshelf/internal/model"
)

// UserRepository is the persistence contract for accounts.
// There is deliberately no Update or Delete — once registered, an account
// is never modified or removed through the application.
//
// The method is CreateUser (not Create) because one sqlite.DB implements
// both this interface and BookRepository — Go method sets are flat per
// type, so the two create operations need distinct names.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetByLogin(ctx context.Context, login string) (*model.User, error)
}

// BookRepository is the persistence contract for catalog records.
// Books are addressed by their (title, author) pair; comparisons are exact.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByTitleAuthor(ctx context.Context, title, author string) (*model.Book, error)
	ListByAuthor(ctx context.Context, author string) ([]model.Book, error)
	ListAuthors(ctx context.Context) ([]string, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, title, author string) error
}
