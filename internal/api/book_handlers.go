package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/http/response"
	"github.com/listenupapp/bookshelf-server/internal/i18n"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/books",
		Summary:       "Add book",
		Description:   "Adds a book to the collection and returns its generated ID",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns id, name and publisher of every book matching the optional filters",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/books/{bookId}",
		Summary:     "Get book",
		Description: "Returns the full record of a book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/books/{bookId}",
		Summary:     "Update book",
		Description: "Replaces every client-supplied field of a book",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/books/{bookId}",
		Summary:     "Delete book",
		Description: "Removes a book from the collection",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookRequest is the request body for creating or updating a book.
// Every field is optional; name and readPage are checked by the service.
type BookRequest struct {
	_         struct{} `json:"-" additionalProperties:"true"`
	Name      string   `json:"name,omitempty" required:"false" doc:"Book title"`
	Year      int      `json:"year,omitempty" required:"false" doc:"Publication year"`
	Author    string   `json:"author,omitempty" required:"false" doc:"Author name"`
	Summary   string   `json:"summary,omitempty" required:"false" doc:"Short description"`
	Publisher string   `json:"publisher,omitempty" required:"false" doc:"Publisher name"`
	PageCount int      `json:"pageCount,omitempty" required:"false" doc:"Total pages"`
	ReadPage  int      `json:"readPage,omitempty" required:"false" doc:"Pages read so far, at most pageCount"`
	Reading   bool     `json:"reading,omitempty" required:"false" doc:"Whether the book is currently being read"`
}

// toInput treats a missing body as an empty payload.
func (r *BookRequest) toInput() domain.BookInput {
	if r == nil {
		return domain.BookInput{}
	}
	return domain.BookInput{
		Name:      r.Name,
		Year:      r.Year,
		Author:    r.Author,
		Summary:   r.Summary,
		Publisher: r.Publisher,
		PageCount: r.PageCount,
		ReadPage:  r.ReadPage,
		Reading:   r.Reading,
	}
}

// BookResponse contains the full book record in API responses.
type BookResponse struct {
	ID         string    `json:"id" doc:"Book ID"`
	Name       string    `json:"name" doc:"Book title"`
	Year       int       `json:"year" doc:"Publication year"`
	Author     string    `json:"author" doc:"Author name"`
	Summary    string    `json:"summary" doc:"Short description"`
	Publisher  string    `json:"publisher" doc:"Publisher name"`
	PageCount  int       `json:"pageCount" doc:"Total pages"`
	ReadPage   int       `json:"readPage" doc:"Pages read so far"`
	Finished   bool      `json:"finished" doc:"Whether pageCount equalled readPage when the book was added"`
	Reading    bool      `json:"reading" doc:"Whether the book is currently being read"`
	InsertedAt Timestamp `json:"insertedAt" doc:"Creation time"`
	UpdatedAt  Timestamp `json:"updatedAt" doc:"Last update time"`
}

func newBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:         b.ID,
		Name:       b.Name,
		Year:       b.Year,
		Author:     b.Author,
		Summary:    b.Summary,
		Publisher:  b.Publisher,
		PageCount:  b.PageCount,
		ReadPage:   b.ReadPage,
		Finished:   b.Finished,
		Reading:    b.Reading,
		InsertedAt: NewTimestamp(b.InsertedAt),
		UpdatedAt:  NewTimestamp(b.UpdatedAt),
	}
}

// BookSummaryResponse is the list projection of a book.
type BookSummaryResponse struct {
	ID        string `json:"id" doc:"Book ID"`
	Name      string `json:"name" doc:"Book title"`
	Publisher string `json:"publisher" doc:"Publisher name"`
}

// MessageResponse is a success envelope with only a message.
type MessageResponse struct {
	Status  string `json:"status" enum:"success" doc:"Always success"`
	Message string `json:"message" doc:"Human-readable result"`
}

// MessageOutput wraps a message-only success envelope for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func (s *Server) message(key i18n.Key) *MessageOutput {
	return &MessageOutput{Body: MessageResponse{
		Status:  response.StatusSuccess,
		Message: s.books.Messages().Get(key),
	}}
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body *BookRequest `required:"false"`
}

// CreatedBookData carries the ID of a new book.
type CreatedBookData struct {
	BookID string `json:"bookId" doc:"ID of the new book"`
}

// CreateBookResponse is the success envelope for a new book.
type CreateBookResponse struct {
	Status  string          `json:"status" enum:"success" doc:"Always success"`
	Message string          `json:"message" doc:"Human-readable result"`
	Data    CreatedBookData `json:"data"`
}

// CreateBookOutput wraps the create book response for Huma.
type CreateBookOutput struct {
	Body CreateBookResponse
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*CreateBookOutput, error) {
	book, err := s.books.CreateBook(ctx, input.Body.toInput())
	if err != nil {
		return nil, apiError(err)
	}

	return &CreateBookOutput{Body: CreateBookResponse{
		Status:  response.StatusSuccess,
		Message: s.books.Messages().Get(i18n.AddSuccess),
		Data:    CreatedBookData{BookID: book.ID},
	}}, nil
}

// ListBooksInput contains the optional list filters.
type ListBooksInput struct {
	Name     string `query:"name" required:"false" doc:"Case-insensitive substring of the book name"`
	Reading  string `query:"reading" required:"false" doc:"1 for books being read, any other value for the rest"`
	Finished string `query:"finished" required:"false" doc:"1 for finished books, any other value for the rest"`

	filter domain.BookFilter
}

// Resolve builds the filter. A flag is applied whenever it is present, so
// ?reading= filters to books not being read.
func (i *ListBooksInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	query := u.Query()

	i.filter = domain.BookFilter{Name: i.Name}
	if query.Has("reading") {
		i.filter.Reading = domain.ParseFlag(i.Reading)
	}
	if query.Has("finished") {
		i.filter.Finished = domain.ParseFlag(i.Finished)
	}
	return nil
}

// ListBooksData wraps the book summaries.
type ListBooksData struct {
	Books []BookSummaryResponse `json:"books" doc:"Matching books in insertion order"`
}

// ListBooksResponse is the success envelope for a list.
type ListBooksResponse struct {
	Status string        `json:"status" enum:"success" doc:"Always success"`
	Data   ListBooksData `json:"data"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	summaries := s.books.ListBooks(ctx, input.filter)

	books := make([]BookSummaryResponse, len(summaries))
	for i, b := range summaries {
		books[i] = BookSummaryResponse{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Status: response.StatusSuccess,
		Data:   ListBooksData{Books: books},
	}}, nil
}

// BookIDInput contains the book ID path parameter.
type BookIDInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// GetBookData wraps the full record.
type GetBookData struct {
	Book BookResponse `json:"book"`
}

// GetBookResponse is the success envelope for a single book.
type GetBookResponse struct {
	Status string      `json:"status" enum:"success" doc:"Always success"`
	Data   GetBookData `json:"data"`
}

// GetBookOutput wraps the get book response for Huma.
type GetBookOutput struct {
	Body GetBookResponse
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*GetBookOutput, error) {
	book, err := s.books.GetBook(ctx, input.BookID)
	if err != nil {
		return nil, apiError(err)
	}

	return &GetBookOutput{Body: GetBookResponse{
		Status: response.StatusSuccess,
		Data:   GetBookData{Book: newBookResponse(book)},
	}}, nil
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	BookID string      `path:"bookId" doc:"Book ID"`
	Body   *BookRequest `required:"false"`
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*MessageOutput, error) {
	if _, err := s.books.UpdateBook(ctx, input.BookID, input.Body.toInput()); err != nil {
		return nil, apiError(err)
	}
	return s.message(i18n.UpdateSuccess), nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	if err := s.books.DeleteBook(ctx, input.BookID); err != nil {
		return nil, apiError(err)
	}
	return s.message(i18n.DeleteSuccess), nil
}
