package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// BookInput carries the fields collected during the dialogue. ISBN is empty
// for manual entry and filled when the book came from a barcode lookup.
// Only the title is mandatory; external catalogues list books with no
// author at all.
type BookInput struct {
	Title       string `validate:"required"`
	Author      string
	Year        string
	Description string
	ISBN        string `validate:"omitempty,isbn"`
	BoxID       int64  `validate:"required"`
}

// Service provides the catalogue operations behind the conversation engine.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Boxes(ctx context.Context) ([]Box, error) {
	return s.repo.ListBoxes(ctx)
}

// BoxNamePrefix is prepended to user-supplied box names.
const BoxNamePrefix = "Box "

// AddBox stores a new box named after the user's text, with the
// conventional prefix.
func (s *Service) AddBox(ctx context.Context, name string) (Box, error) {
	return s.repo.CreateBox(ctx, BoxNamePrefix+name)
}

// SelectBox resolves a box name to a stored box, ErrNoSuchBox on no match.
func (s *Service) SelectBox(ctx context.Context, name string) (Box, error) {
	return s.repo.GetBoxByName(ctx, name)
}

// AddBook validates and stores a book. When no ISBN is known a unique
// placeholder token substitutes for it. When any free-text field contains
// Cyrillic, title, author and description are transliterated before
// storage; ISBN and year are never touched.
//
// A duplicate ISBN is reported to the caller as ErrDuplicateISBN, never
// silently resolved to the pre-existing row.
func (s *Service) AddBook(ctx context.Context, in BookInput) (Book, error) {
	if err := validate.Struct(in); err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if ContainsCyrillic(in.Title + in.Author + in.Year + in.Description) {
		in.Title = Transliterate(in.Title)
		in.Author = Transliterate(in.Author)
		in.Description = Transliterate(in.Description)
	}

	isbn := in.ISBN
	if isbn == "" {
		isbn = strings.ReplaceAll(uuid.New().String(), "-", "")
	}

	book := Book{
		Title:       in.Title,
		ISBN:        isbn,
		Author:      in.Author,
		Year:        in.Year,
		Description: in.Description,
		BoxID:       in.BoxID,
	}
	if err := s.repo.CreateBook(ctx, &book); err != nil {
		if err == ErrDuplicateISBN {
			log.Printf("catalog: book already exists: %s, %s", book.Title, book.ISBN)
		}
		return Book{}, err
	}
	return book, nil
}

// AttachCover replaces the cover of a stored book.
func (s *Service) AttachCover(ctx context.Context, bookID int64, cover []byte) error {
	ok, err := s.repo.AttachCover(ctx, bookID, cover)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBookNotFound
	}
	return nil
}

// Search matches the keyword against title, author and description. A
// Cyrillic keyword is also searched in its transliterated form, so books
// stored Latin-side are found either way.
func (s *Service) Search(ctx context.Context, keyword string) ([]Book, error) {
	keywords := []string{keyword}
	if ContainsCyrillic(keyword) {
		keywords = append(keywords, Transliterate(keyword))
	}

	seen := map[int64]bool{}
	var out []Book
	for _, kw := range keywords {
		books, err := s.repo.SearchBooks(ctx, kw)
		if err != nil {
			return nil, err
		}
		for _, b := range books {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out, nil
}

// BooksInBox lists the books of a box by its stored name. An unknown box
// yields an empty list, not an error.
func (s *Service) BooksInBox(ctx context.Context, boxName string) ([]Book, error) {
	return s.repo.BooksInBox(ctx, boxName)
}
