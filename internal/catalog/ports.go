package catalog

import (
	"context"
)

// Repository defines the contract for box and book storage.
//
// Every method is independently transactional: CreateBook relies on the
// schema's unique ISBN constraint instead of a prior existence check, so
// concurrent sessions cannot race two rows with the same ISBN in.
type Repository interface {
	CreateBox(ctx context.Context, name string) (Box, error)
	ListBoxes(ctx context.Context) ([]Box, error)
	// GetBoxByName returns ErrNoSuchBox when the name does not match.
	GetBoxByName(ctx context.Context, name string) (Box, error)
	// CreateBook fills in book.ID on success and returns ErrDuplicateISBN
	// when the ISBN is already present.
	CreateBook(ctx context.Context, book *Book) error
	// AttachCover replaces any previous cover. It reports whether the
	// book existed.
	AttachCover(ctx context.Context, bookID int64, cover []byte) (bool, error)
	// SearchBooks is a case-insensitive substring match over title,
	// author and description.
	SearchBooks(ctx context.Context, keyword string) ([]Book, error)
	// BooksInBox returns an empty slice for an unknown box name.
	BooksInBox(ctx context.Context, boxName string) ([]Book, error)
}
