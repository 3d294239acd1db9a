// Package store owns the in-memory book collection and its JSON file persistence.
package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/id"
)

// Store holds the ordered book collection.
//
// Every mutation rewrites the whole backing file. Persistence failures are
// logged and otherwise ignored; the in-memory collection stays authoritative
// for the life of the process.
type Store struct {
	mu     sync.RWMutex
	books  []domain.Book
	file   *FileStore
	logger *slog.Logger
}

// New creates a store and loads the collection from file once.
// A missing or unreadable file yields an empty collection.
func New(ctx context.Context, file *FileStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		file:   file,
		logger: logger,
	}
	s.books = s.load(ctx)

	return s
}

// Open is shorthand for New(ctx, NewFileStore(path), logger).
func Open(ctx context.Context, path string, logger *slog.Logger) *Store {
	return New(ctx, NewFileStore(path), logger)
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.file.Path()
}

func (s *Store) load(ctx context.Context) []domain.Book {
	books, err := s.file.Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.InfoContext(ctx, "Books file not found, starting with empty collection", "path", s.file.Path())
		return []domain.Book{}
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to read books data", "path", s.file.Path(), "error", err)
		return []domain.Book{}
	}

	s.logger.InfoContext(ctx, "Books loaded", "path", s.file.Path(), "count", len(books))
	return books
}

// persistLocked writes the collection. Caller must hold the write lock.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.file.Save(s.books); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save books data", "path", s.file.Path(), "error", err)
	}
}

func (s *Store) indexLocked(bookID string) int {
	return slices.IndexFunc(s.books, func(b domain.Book) bool { return b.ID == bookID })
}

// Create assigns a fresh ID and timestamps, appends the book and persists.
// Input is assumed valid.
func (s *Store) Create(ctx context.Context, in domain.BookInput) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookID, err := id.Unique(func(candidate string) bool {
		return s.indexLocked(candidate) >= 0
	})
	if err != nil {
		return domain.Book{}, err
	}

	book := domain.NewBook(bookID, in, domain.Now())
	s.books = append(s.books, book)
	s.persistLocked(ctx)

	s.logger.DebugContext(ctx, "Book created", "book_id", book.ID)
	return book, nil
}

// List returns the books matching filter in insertion order.
// The result is never nil.
func (s *Store) List(_ context.Context, filter domain.BookFilter) []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match := filter.Matcher()
	out := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if match(b) {
			out = append(out, b)
		}
	}
	return out
}

// Get returns the book with bookID or ErrBookNotFound.
func (s *Store) Get(_ context.Context, bookID string) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(bookID)
	if i < 0 {
		return domain.Book{}, ErrBookNotFound
	}
	return s.books[i], nil
}

// Update replaces the client-owned fields of bookID and persists.
// Returns ErrBookNotFound when the ID is unknown; nothing is written then.
func (s *Store) Update(ctx context.Context, bookID string, in domain.BookInput) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(bookID)
	if i < 0 {
		return domain.Book{}, ErrBookNotFound
	}

	s.books[i].Apply(in, domain.Now())
	s.persistLocked(ctx)

	s.logger.DebugContext(ctx, "Book updated", "book_id", bookID)
	return s.books[i], nil
}

// Delete removes bookID and persists.
// Returns ErrBookNotFound when the ID is unknown; nothing is written then.
func (s *Store) Delete(ctx context.Context, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.books)
	s.books = slices.DeleteFunc(s.books, func(b domain.Book) bool { return b.ID == bookID })
	if len(s.books) == before {
		return ErrBookNotFound
	}

	s.persistLocked(ctx)

	s.logger.DebugContext(ctx, "Book deleted", "book_id", bookID)
	return nil
}

// Reload re-reads the backing file if its contents differ from what the store
// last read or wrote, replacing the collection. Reports whether it reloaded.
// Read or parse failures leave the current collection in place.
func (s *Store) Reload(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, changed, err := s.file.LoadChanged()
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to reload books data", "path", s.file.Path(), "error", err)
		return false
	}
	if !changed {
		return false
	}

	s.books = books
	s.logger.InfoContext(ctx, "Books reloaded from disk", "path", s.file.Path(), "count", len(books))
	return true
}

// All returns a copy of the whole collection.
func (s *Store) All() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.books)
}

// Len returns the number of books.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
