package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateBox(ctx context.Context, name string) (Box, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(Box), args.Error(1)
}

func (m *mockRepo) ListBoxes(ctx context.Context) ([]Box, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Box), args.Error(1)
}

func (m *mockRepo) GetBoxByName(ctx context.Context, name string) (Box, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(Box), args.Error(1)
}

func (m *mockRepo) CreateBook(ctx context.Context, book *Book) error {
	args := m.Called(ctx, book)
	if args.Error(0) == nil {
		book.ID = 1
	}
	return args.Error(0)
}

func (m *mockRepo) AttachCover(ctx context.Context, bookID int64, cover []byte) (bool, error) {
	args := m.Called(ctx, bookID, cover)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) SearchBooks(ctx context.Context, keyword string) ([]Book, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Book), args.Error(1)
}

func (m *mockRepo) BooksInBox(ctx context.Context, boxName string) ([]Book, error) {
	args := m.Called(ctx, boxName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Book), args.Error(1)
}

func TestAddBoxPrefixesName(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateBox", mock.Anything, "Box SciFi").
		Return(Box{ID: 5, Name: "Box SciFi"}, nil)

	svc := NewService(repo)
	box, err := svc.AddBox(context.Background(), "SciFi")
	require.NoError(t, err)
	assert.Equal(t, "Box SciFi", box.Name)
	repo.AssertExpectations(t)
}

func TestAddBookGeneratesPlaceholderISBN(t *testing.T) {
	repo := new(mockRepo)
	var stored *Book
	repo.On("CreateBook", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Book) }).
		Return(nil)

	svc := NewService(repo)
	book, err := svc.AddBook(context.Background(), BookInput{
		Title:       "Dune",
		Author:      "Herbert",
		Year:        "1965",
		Description: "Desert planet",
		BoxID:       5,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.ISBN, 32)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Herbert", book.Author)
}

func TestAddBookKeepsScannedISBN(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateBook", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo)
	book, err := svc.AddBook(context.Background(), BookInput{
		Title:  "Dune",
		Author: "Herbert",
		ISBN:   "9780441013593",
		BoxID:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "9780441013593", book.ISBN)
}

func TestAddBookTransliteratesCyrillicFields(t *testing.T) {
	repo := new(mockRepo)
	var stored *Book
	repo.On("CreateBook", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Book) }).
		Return(nil)

	svc := NewService(repo)
	_, err := svc.AddBook(context.Background(), BookInput{
		Title:       "Дюна",
		Author:      "Герберт",
		Year:        "1965",
		Description: "пустынная планета",
		BoxID:       5,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Dyuna", stored.Title)
	assert.Equal(t, "Gerbert", stored.Author)
	assert.Equal(t, "pustynnaya planeta", stored.Description)
	assert.Equal(t, "1965", stored.Year)
}

func TestAddBookLatinFieldsPassThrough(t *testing.T) {
	repo := new(mockRepo)
	var stored *Book
	repo.On("CreateBook", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Book) }).
		Return(nil)

	svc := NewService(repo)
	_, err := svc.AddBook(context.Background(), BookInput{
		Title:       "Dune",
		Author:      "Herbert",
		Year:        "1965",
		Description: "Desert planet",
		BoxID:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", stored.Title)
	assert.Equal(t, "Herbert", stored.Author)
	assert.Equal(t, "Desert planet", stored.Description)
}

func TestAddBookAllowsEmptyAuthor(t *testing.T) {
	repo := new(mockRepo)
	var stored *Book
	repo.On("CreateBook", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Book) }).
		Return(nil)

	svc := NewService(repo)

	// Barcode lookups can resolve to a volume with no author listed.
	_, err := svc.AddBook(context.Background(), BookInput{
		Title: "Anonymous Work",
		ISBN:  "9780441013593",
		BoxID: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "", stored.Author)

	// Same for manual entry with an empty author field.
	_, err = svc.AddBook(context.Background(), BookInput{
		Title:       "Dune",
		Year:        "1965",
		Description: "Desert planet",
		BoxID:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, "", stored.Author)
}

func TestAddBookSurfacesDuplicateISBN(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateBook", mock.Anything, mock.Anything).Return(ErrDuplicateISBN)

	svc := NewService(repo)
	_, err := svc.AddBook(context.Background(), BookInput{
		Title:  "Dune",
		Author: "Herbert",
		ISBN:   "9780441013593",
		BoxID:  5,
	})
	assert.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestAddBookRejectsMissingTitle(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)
	_, err := svc.AddBook(context.Background(), BookInput{Author: "Herbert", BoxID: 5})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateBook")
}

func TestSearchExpandsCyrillicKeyword(t *testing.T) {
	repo := new(mockRepo)
	repo.On("SearchBooks", mock.Anything, "Дюна").
		Return([]Book{{ID: 1, Title: "Dyuna"}}, nil)
	repo.On("SearchBooks", mock.Anything, "Dyuna").
		Return([]Book{{ID: 1, Title: "Dyuna"}, {ID: 2, Title: "Dyuna 2"}}, nil)

	svc := NewService(repo)
	books, err := svc.Search(context.Background(), "Дюна")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, int64(1), books[0].ID)
	assert.Equal(t, int64(2), books[1].ID)
}

func TestAttachCoverUnknownBook(t *testing.T) {
	repo := new(mockRepo)
	repo.On("AttachCover", mock.Anything, int64(42), mock.Anything).Return(false, nil)

	svc := NewService(repo)
	err := svc.AttachCover(context.Background(), 42, []byte{0xff})
	assert.ErrorIs(t, err, ErrBookNotFound)
}
