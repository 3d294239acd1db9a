// Package service provides the book operations behind the HTTP API and CLI.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/i18n"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// BookService validates requests and applies them to the store.
// Errors it returns are *domainerrors.Error carrying a localized message.
type BookService struct {
	store     *store.Store
	validator *validation.Validator
	messages  *i18n.Messages
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, validator *validation.Validator, messages *i18n.Messages, logger *slog.Logger) *BookService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BookService{
		store:     store,
		validator: validator,
		messages:  messages,
		logger:    logger,
	}
}

// Messages returns the catalog used for responses.
func (s *BookService) Messages() *i18n.Messages {
	return s.messages
}

// CreateBook validates in and stores a new book.
func (s *BookService) CreateBook(ctx context.Context, in domain.BookInput) (domain.Book, error) {
	if err := s.validate(in, i18n.AddNameRequired, i18n.AddReadPage); err != nil {
		return domain.Book{}, err
	}

	book, err := s.store.Create(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create book", "error", err)
		return domain.Book{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create book")
	}

	s.logger.InfoContext(ctx, "Book added", "book_id", book.ID, "name", book.Name)
	return book, nil
}

// ListBooks returns the projection of every book matching filter.
func (s *BookService) ListBooks(ctx context.Context, filter domain.BookFilter) []domain.BookSummary {
	books := s.store.List(ctx, filter)

	out := make([]domain.BookSummary, len(books))
	for i, b := range books {
		out[i] = b.Summarize()
	}
	return out
}

// GetBook returns the full record for bookID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	book, err := s.store.Get(ctx, bookID)
	if err != nil {
		return domain.Book{}, s.storeError(err, i18n.GetNotFound)
	}
	return book, nil
}

// UpdateBook validates in, then replaces the stored fields of bookID.
// Validation runs before the lookup, so a bad payload for an unknown ID is a
// validation error.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, in domain.BookInput) (domain.Book, error) {
	if err := s.validate(in, i18n.UpdateNameRequired, i18n.UpdateReadPage); err != nil {
		return domain.Book{}, err
	}

	book, err := s.store.Update(ctx, bookID, in)
	if err != nil {
		return domain.Book{}, s.storeError(err, i18n.UpdateNotFound)
	}

	s.logger.InfoContext(ctx, "Book updated", "book_id", book.ID)
	return book, nil
}

// DeleteBook removes bookID.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.Delete(ctx, bookID); err != nil {
		return s.storeError(err, i18n.DeleteNotFound)
	}

	s.logger.InfoContext(ctx, "Book deleted", "book_id", bookID)
	return nil
}

// validate reports the name rule before the page rule, matching the order
// clients rely on when both fail.
func (s *BookService) validate(in domain.BookInput, nameKey, pageKey i18n.Key) error {
	err := s.validator.Validate(in)
	if err == nil {
		return nil
	}

	fields := validation.Fields(err)
	switch {
	case fields.Has("name"):
		return domainerrors.Validation(s.messages.Get(nameKey)).WithDetails(fields)
	case fields.Has("readPage"):
		return domainerrors.Validation(s.messages.Get(pageKey)).WithDetails(fields)
	default:
		return err
	}
}

func (s *BookService) storeError(err error, notFoundKey i18n.Key) error {
	if errors.Is(err, store.ErrBookNotFound) {
		return domainerrors.NotFound(s.messages.Get(notFoundKey)).WithCause(err)
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "book store failure")
}
