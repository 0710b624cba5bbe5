// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// Book represents one catalog record.
//
// The pair (Title, Author) identifies a book: the update and delete operations
// address books by that pair, and the database enforces UNIQUE(title, author).
// Comparison is exact byte equality — no trimming, no case folding.
//
// WHY Image string (not *string)?
// Image and AuthorImage are optional. We use the empty string as "not set"
// rather than a nullable pointer — simpler to work with, safe to render, and
// the empty value round-trips cleanly through JSON and the database.
type Book struct {
	ID          int64  `json:"id"           db:"id"`
	Title       string `json:"title"        db:"title"`
	Author      string `json:"author"       db:"author"`
	Pages       int    `json:"pages"        db:"pages"`
	Image       string `json:"image"        db:"image"`        // cover URL/path, may be empty
	AuthorImage string `json:"author_image" db:"author_image"` // portrait URL/path, may be empty
}
