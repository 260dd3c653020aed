package catalog

import (
	"errors"
	"fmt"
)

// ErrNoSuchBox is returned when a box name does not resolve to a stored box.
var ErrNoSuchBox = errors.New("no such box")

// ErrDuplicateISBN is returned when a book insert collides with an existing ISBN.
var ErrDuplicateISBN = errors.New("book with this isbn already exists")

// ErrBookNotFound is returned when a book id does not resolve to a stored book.
var ErrBookNotFound = errors.New("book not found")

// ErrInvalidInput is returned when collected book fields fail validation.
var ErrInvalidInput = errors.New("invalid book input")

// Box is a named storage bucket grouping books.
type Box struct {
	ID   int64
	Name string
}

func (b Box) String() string {
	return b.Name
}

// Book is a catalogued item. Year stays text because external catalogue
// data is not always a plain number ("1965", "2003-07", "n.d.").
type Book struct {
	ID          int64
	Title       string
	ISBN        string
	Author      string
	Year        string
	Description string
	Cover       []byte
	BoxID       int64
}

func (b Book) String() string {
	return fmt.Sprintf("%s, %s, %s", b.Title, b.ISBN, b.Author)
}
