package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"boxbot/internal/catalog"
	"boxbot/internal/platform/googlebooks"
)

// Catalog is the slice of the catalogue service the engine drives.
type Catalog interface {
	Boxes(ctx context.Context) ([]catalog.Box, error)
	AddBox(ctx context.Context, name string) (catalog.Box, error)
	SelectBox(ctx context.Context, name string) (catalog.Box, error)
	AddBook(ctx context.Context, in catalog.BookInput) (catalog.Book, error)
	AttachCover(ctx context.Context, bookID int64, cover []byte) error
	Search(ctx context.Context, keyword string) ([]catalog.Book, error)
	BooksInBox(ctx context.Context, boxName string) ([]catalog.Book, error)
}

// Lookup resolves an ISBN to bibliographic metadata.
type Lookup interface {
	Resolve(ctx context.Context, isbn string) (*googlebooks.Resolution, error)
}

// Decoder extracts a barcode from image bytes.
type Decoder interface {
	Decode(img []byte) (string, error)
}

// delimiters in fixed priority order; the first one present in the text
// splits it into title, author, year, description.
var delimiters = []string{",", ";", "|", "\n"}

const (
	refusalText  = `Sorry, this bot is not ready for production yet ¯\_(ツ)_/¯.`
	manualPrompt = "Send me a title, author, year, description"
	coverPrompt  = "Please send me a photo of cover, so I know what it looks like. Or send me a title, author, year, description."
)

// Engine runs one dialogue per chat. Sessions are created by /start and
// discarded by /cancel; the sessions map is the only shared state and is
// guarded by mu.
type Engine struct {
	catalog Catalog
	lookup  Lookup
	decoder Decoder
	allow   AllowList

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewEngine(cat Catalog, lookup Lookup, decoder Decoder, allow AllowList) *Engine {
	return &Engine{
		catalog:  cat,
		lookup:   lookup,
		decoder:  decoder,
		allow:    allow,
		sessions: make(map[int64]*Session),
	}
}

func (e *Engine) session(chatID int64) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[chatID]
	return s, ok
}

func (e *Engine) putSession(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[s.ChatID] = s
}

func (e *Engine) dropSession(chatID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, chatID)
}

// State reports the dialogue state of a chat, StateCancelled when no
// session exists.
func (e *Engine) State(chatID int64) State {
	s, ok := e.session(chatID)
	if !ok {
		return StateCancelled
	}
	return s.State
}

// Handle processes one inbound event and returns the replies to render.
// Domain-level trouble (bad input, failed lookups, duplicates) is answered
// with a re-prompt; only unexpected faults come back as an error, for the
// transport's top-level handler.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, error) {
	if !e.allow.Allowed(ev.UserID) {
		log.Printf("conversation: unauthorized access denied for %d", ev.UserID)
		return []Reply{{Text: refusalText}}, nil
	}

	switch ev.Command {
	case "start":
		return e.startSession(ctx, ev)
	case "cancel", "stop", "exit":
		e.dropSession(ev.ChatID)
		return []Reply{{Text: "Bye! I hope we can talk again some day.", RemoveKeyboard: true}}, nil
	case "find", "book":
		return e.findBooks(ctx, ev)
	case "box":
		return e.boxContents(ctx, ev)
	}

	s, ok := e.session(ev.ChatID)
	if !ok {
		return []Reply{{Text: "Send /start to begin cataloguing."}}, nil
	}

	if ev.PhotoFailed {
		return []Reply{{Text: "Something went wrong, try again"}}, nil
	}

	switch s.State {
	case StateSelectBox:
		return e.selectBox(ctx, s, ev)
	case StateAddBoxName:
		return e.addBox(ctx, s, ev)
	case StateCollectDescription:
		return e.collectDescription(ctx, s, ev)
	case StateCollectCover:
		return e.collectCover(ctx, s, ev)
	}
	return []Reply{{Text: "Send /start to begin cataloguing."}}, nil
}

func (e *Engine) startSession(ctx context.Context, ev Event) ([]Reply, error) {
	keyboard, err := e.boxKeyboard(ctx)
	if err != nil {
		return nil, err
	}

	e.putSession(&Session{ChatID: ev.ChatID, UserID: ev.UserID, State: StateSelectBox})

	return []Reply{{
		Text: "Hi! I will hold a conversation with you. Send /cancel to stop.\n\n" +
			"Do you want to add a box or select one?",
		Keyboard: keyboard,
	}}, nil
}

func (e *Engine) boxKeyboard(ctx context.Context) ([]string, error) {
	boxes, err := e.catalog.Boxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing boxes: %w", err)
	}
	keyboard := make([]string, 0, len(boxes)+1)
	for _, b := range boxes {
		keyboard = append(keyboard, b.Name)
	}
	return append(keyboard, NewBoxCaption), nil
}

func (e *Engine) selectBox(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Text == NewBoxCaption {
		s.State = StateAddBoxName
		return []Reply{{Text: "What is the name of new box?", RemoveKeyboard: true}}, nil
	}

	box, err := e.catalog.SelectBox(ctx, ev.Text)
	if errors.Is(err, catalog.ErrNoSuchBox) {
		keyboard, kerr := e.boxKeyboard(ctx)
		if kerr != nil {
			return nil, kerr
		}
		return []Reply{{
			Text:     fmt.Sprintf("I don't know a box called %q. Pick one of these or add a new one.", ev.Text),
			Keyboard: keyboard,
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting box %q: %w", ev.Text, err)
	}

	s.Box = box
	s.State = StateCollectDescription
	return []Reply{{
		Text: fmt.Sprintf("You selected box: %s, now put a book to it. What is the book data? Send me barcode photo or title, author, year, description", box.Name),
		RemoveKeyboard: true,
	}}, nil
}

func (e *Engine) addBox(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if strings.TrimSpace(ev.Text) == "" {
		return []Reply{{Text: "What is the name of new box?"}}, nil
	}

	box, err := e.catalog.AddBox(ctx, ev.Text)
	if err != nil {
		return nil, fmt.Errorf("adding box %q: %w", ev.Text, err)
	}

	s.Box = box
	s.State = StateCollectDescription
	return []Reply{{
		Text: fmt.Sprintf("You selected box: %s, now put a book to it. What is the book data? Send me title, author, year, description", box.Name),
		RemoveKeyboard: true,
	}}, nil
}

func (e *Engine) collectDescription(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Photo != nil {
		return e.recognizeBarcode(ctx, s, ev)
	}

	title, author, year, description, ok := splitBookText(ev.Text)
	if !ok {
		return []Reply{{Text: "Sorry, no delimiters in the message, try comma -> ,"}}, nil
	}

	book, err := e.catalog.AddBook(ctx, catalog.BookInput{
		Title:       title,
		Author:      author,
		Year:        year,
		Description: description,
		BoxID:       s.Box.ID,
	})
	switch {
	case errors.Is(err, catalog.ErrDuplicateISBN):
		return []Reply{{Text: "Looks like this book is already in the catalogue. " + manualPrompt}}, nil
	case errors.Is(err, catalog.ErrInvalidInput):
		return []Reply{{Text: "I could not make sense of that. " + manualPrompt}}, nil
	case err != nil:
		return nil, fmt.Errorf("creating book: %w", err)
	}

	s.BookID = book.ID
	s.State = StateCollectCover
	return []Reply{{
		Text: "Ok! Please send me a photo of cover, so I know what it looks like, or send /skip if you don't want to.",
	}}, nil
}

func (e *Engine) recognizeBarcode(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	code, err := e.decoder.Decode(ev.Photo)
	if err != nil {
		return []Reply{{Text: "Oops no barcode found! " + manualPrompt}}, nil
	}

	res, err := e.lookup.Resolve(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolving isbn %s: %w", code, err)
	}
	if res.TotalItems != 1 || len(res.Items) != 1 {
		return []Reply{{Text: fmt.Sprintf("Oops no barcode %s info! %s", code, manualPrompt)}}, nil
	}

	info := res.Items[0].VolumeInfo
	book, err := e.catalog.AddBook(ctx, catalog.BookInput{
		Title:       info.Title,
		Author:      strings.Join(info.Authors, ","),
		Year:        info.PublishedDate,
		Description: info.Description,
		ISBN:        code,
		BoxID:       s.Box.ID,
	})
	switch {
	case errors.Is(err, catalog.ErrDuplicateISBN):
		return []Reply{{Text: fmt.Sprintf("I already have a book with ISBN %s. %s", code, manualPrompt)}}, nil
	case errors.Is(err, catalog.ErrInvalidInput):
		return []Reply{{Text: fmt.Sprintf("Oops no barcode %s info! %s", code, manualPrompt)}}, nil
	case err != nil:
		return nil, fmt.Errorf("creating book from barcode %s: %w", code, err)
	}

	s.BookID = book.ID
	s.State = StateCollectCover
	return []Reply{{
		Text: fmt.Sprintf("Ok! I know this book, %s, now send me a cover", book),
	}}, nil
}

func (e *Engine) collectCover(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Command == "skip" {
		s.State = StateCollectDescription
		s.BookID = 0
		return []Reply{
			{Text: "Ok, now you can add another book"},
			{Text: coverPrompt},
		}, nil
	}

	if ev.Photo == nil {
		return []Reply{{Text: "Send me a photo of the cover, or /skip."}}, nil
	}

	if err := e.catalog.AttachCover(ctx, s.BookID, ev.Photo); err != nil {
		return nil, fmt.Errorf("attaching cover to book %d: %w", s.BookID, err)
	}

	s.State = StateCollectDescription
	s.BookID = 0
	return []Reply{
		{Text: "Ok, done, now you can add another book"},
		{Text: coverPrompt},
	}, nil
}

func (e *Engine) findBooks(ctx context.Context, ev Event) ([]Reply, error) {
	keyword := strings.TrimSpace(ev.Args)
	if keyword == "" {
		return []Reply{{Text: "Please provide a keyword to search for"}}, nil
	}

	books, err := e.catalog.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", keyword, err)
	}
	if len(books) == 0 {
		return []Reply{{Text: fmt.Sprintf("Oops! I did not find anything by %s", keyword)}}, nil
	}

	var replies []Reply
	for _, b := range books {
		replies = append(replies, Reply{Text: b.String()})
		if len(b.Cover) > 0 {
			replies = append(replies, Reply{Photo: b.Cover})
		} else {
			replies = append(replies, Reply{Text: "Oops! No cover image for this book"})
		}
	}
	return replies, nil
}

func (e *Engine) boxContents(ctx context.Context, ev Event) ([]Reply, error) {
	s, ok := e.session(ev.ChatID)
	if !ok || s.Box.ID == 0 {
		return []Reply{{Text: "Select a box first with /start."}}, nil
	}

	books, err := e.catalog.BooksInBox(ctx, s.Box.Name)
	if err != nil {
		return nil, fmt.Errorf("listing box %q: %w", s.Box.Name, err)
	}
	if len(books) == 0 {
		return []Reply{{Text: fmt.Sprintf("No books found in %s", s.Box.Name)}}, nil
	}

	lines := make([]string, 0, len(books))
	for _, b := range books {
		lines = append(lines, fmt.Sprintf("%s - %s", b.Title, b.Author))
	}
	return []Reply{{Text: fmt.Sprintf("Books in %s:\n%s", s.Box.Name, strings.Join(lines, "\n"))}}, nil
}

// splitBookText splits free text into the four book fields using the first
// delimiter present, trying delimiters in priority order.
func splitBookText(text string) (title, author, year, description string, ok bool) {
	for _, d := range delimiters {
		if !strings.Contains(text, d) {
			continue
		}
		parts := strings.SplitN(text, d, 4)
		if len(parts) < 4 {
			return "", "", "", "", false
		}
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]),
			strings.TrimSpace(parts[2]), strings.TrimSpace(parts[3]), true
	}
	return "", "", "", "", false
}
