package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/i18n"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api  humatest.TestAPI
	path string
}

func setupTestServerWith(t *testing.T, lang string, opts Options) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "books.json")
	st := store.Open(t.Context(), path, nil)
	books := service.NewBookService(st, validation.New(), i18n.MustNew(lang), nil)

	s := NewServer(st, books, opts, nil)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		path:   path,
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, "en", Options{})
}

// envelope mirrors every response body.
type envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()

	var env envelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

type createdData struct {
	BookID string `json:"bookId"`
}

type listData struct {
	Books []BookSummaryResponse `json:"books"`
}

type bookData struct {
	Book map[string]any `json:"book"`
}

func sampleBook() map[string]any {
	return map[string]any{
		"name":      "Buku A",
		"year":      2010,
		"author":    "John Doe",
		"summary":   "Lorem ipsum dolor sit amet",
		"publisher": "Dicoding Indonesia",
		"pageCount": 100,
		"readPage":  25,
		"reading":   false,
	}
}

func (ts *testServer) createBook(t *testing.T, body map[string]any) string {
	t.Helper()

	resp := ts.api.Post("/books", body)
	require.Equal(t, http.StatusCreated, resp.Code, "create failed: %s", resp.Body.String())

	env := decodeEnvelope[createdData](t, resp.Body.Bytes())
	require.NotEmpty(t, env.Data.BookID)
	return env.Data.BookID
}

func TestCreateBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/books", sampleBook())
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decodeEnvelope[createdData](t, resp.Body.Bytes())
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Book added successfully", env.Message)
	assert.Len(t, env.Data.BookID, 21)
	assert.Equal(t, 1, ts.store.Len())
}

func TestCreateBook_Finished(t *testing.T) {
	ts := setupTestServer(t)

	id := ts.createBook(t, map[string]any{"name": "A", "pageCount": 100, "readPage": 100})

	book, err := ts.store.Get(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, book.Finished)
	assert.Equal(t, book.InsertedAt, book.UpdatedAt)
}

func TestCreateBook_Invalid(t *testing.T) {
	noName := sampleBook()
	delete(noName, "name")
	emptyName := sampleBook()
	emptyName["name"] = ""
	tooFar := sampleBook()
	tooFar["readPage"] = 150

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing name", noName, "Failed to add book. must supply a name"},
		{"empty name", emptyName, "Failed to add book. must supply a name"},
		{"read page over page count", tooFar, "Failed to add book. readPage cannot exceed pageCount"},
		{"no body", nil, "Failed to add book. must supply a name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			args := []any{}
			if tt.body != nil {
				args = append(args, tt.body)
			}
			resp := ts.api.Post("/books", args...)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decodeEnvelope[any](t, resp.Body.Bytes())
			assert.Equal(t, "fail", env.Status)
			assert.Equal(t, tt.want, env.Message)
			assert.Equal(t, 0, ts.store.Len())
		})
	}
}

func TestCreateBook_IgnoresUnknownFields(t *testing.T) {
	ts := setupTestServer(t)

	body := sampleBook()
	body["id"] = "client-chosen"
	body["finished"] = true
	id := ts.createBook(t, body)

	assert.NotEqual(t, "client-chosen", id)
	book, err := ts.store.Get(t.Context(), id)
	require.NoError(t, err)
	assert.False(t, book.Finished)
}

func TestCreateBook_MalformedJSON(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/books", "Content-Type: application/json", strings.NewReader(`{"name":`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "fail", env.Status)
	assert.NotEmpty(t, env.Message)
}

func TestCreateBook_WrongType(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/books", map[string]any{"name": 42})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "fail", decodeEnvelope[any](t, resp.Body.Bytes()).Status)
}

func TestListBooks_Empty(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/books")
	require.Equal(t, http.StatusOK, resp.Code)

	assert.JSONEq(t, `{"status":"success","data":{"books":[]}}`, resp.Body.String())
}

func TestListBooks_Filters(t *testing.T) {
	ts := setupTestServer(t)

	readingUnfinished := ts.createBook(t, map[string]any{"name": "Kaa", "publisher": "P1", "pageCount": 10, "readPage": 5, "reading": true})
	readingFinished := ts.createBook(t, map[string]any{"name": "Bobaa", "publisher": "P2", "pageCount": 10, "readPage": 10, "reading": true})
	idleUnfinished := ts.createBook(t, map[string]any{"name": "Cee", "publisher": "P3", "pageCount": 10, "readPage": 0, "reading": false})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter keeps insertion order", "", []string{readingUnfinished, readingFinished, idleUnfinished}},
		{"name is case-insensitive substring", "?name=AA", []string{readingUnfinished, readingFinished}},
		{"empty name matches everything", "?name=", []string{readingUnfinished, readingFinished, idleUnfinished}},
		{"reading=1", "?reading=1", []string{readingUnfinished, readingFinished}},
		{"reading=0", "?reading=0", []string{idleUnfinished}},
		{"present but empty flag means false", "?reading=", []string{idleUnfinished}},
		{"finished=1", "?finished=1", []string{readingFinished}},
		{"reading and not finished", "?reading=1&finished=0", []string{readingUnfinished}},
		{"no match", "?name=zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/books" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			env := decodeEnvelope[listData](t, resp.Body.Bytes())
			ids := make([]string, 0, len(env.Data.Books))
			for _, b := range env.Data.Books {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListBooks_Projection(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())

	resp := ts.api.Get("/books")
	require.Equal(t, http.StatusOK, resp.Code)

	var raw struct {
		Data struct {
			Books []map[string]any `json:"books"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	require.Len(t, raw.Data.Books, 1)
	assert.Equal(t, map[string]any{"id": id, "name": "Buku A", "publisher": "Dicoding Indonesia"}, raw.Data.Books[0])
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())

	resp := ts.api.Get("/books/" + id)
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[bookData](t, resp.Body.Bytes())
	assert.Equal(t, "success", env.Status)

	book := env.Data.Book
	assert.Equal(t, id, book["id"])
	assert.Equal(t, "Buku A", book["name"])
	assert.InDelta(t, 2010, book["year"], 0)
	assert.InDelta(t, 100, book["pageCount"], 0)
	assert.InDelta(t, 25, book["readPage"], 0)
	assert.Equal(t, false, book["finished"])
	assert.Equal(t, false, book["reading"])
	assert.Equal(t, book["insertedAt"], book["updatedAt"])

	insertedAt, ok := book["insertedAt"].(string)
	require.True(t, ok)
	_, err := time.Parse(TimestampLayout, insertedAt)
	assert.NoError(t, err, "timestamps use millisecond ISO 8601")
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/books/xxxxx")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"status":"fail","message":"book not found"}`, resp.Body.String())
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())

	before, err := ts.store.Get(t.Context(), id)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	body := sampleBook()
	body["name"] = "Buku A Revisi"
	body["readPage"] = 100
	resp := ts.api.Put("/books/"+id, body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"status":"success","message":"Book updated successfully"}`, resp.Body.String())

	after, err := ts.store.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Buku A Revisi", after.Name)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.InsertedAt, after.InsertedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	assert.False(t, after.Finished, "finished is only derived on create")
}

func TestUpdateBook_Errors(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())

	noName := sampleBook()
	delete(noName, "name")
	tooFar := sampleBook()
	tooFar["readPage"] = 101

	tests := []struct {
		name       string
		id         string
		body       map[string]any
		wantStatus int
		wantMsg    string
	}{
		{"missing name", id, noName, http.StatusBadRequest, "Failed to update book. must supply a name"},
		{"read page over page count", id, tooFar, http.StatusBadRequest, "Failed to update book. readPage cannot exceed pageCount"},
		{"unknown id", "xxxxx", sampleBook(), http.StatusNotFound, "update failed, id not found"},
		{"validation before lookup", "xxxxx", noName, http.StatusBadRequest, "Failed to update book. must supply a name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Put("/books/"+tt.id, tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())

			env := decodeEnvelope[any](t, resp.Body.Bytes())
			assert.Equal(t, "fail", env.Status)
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}

	book, err := ts.store.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Buku A", book.Name)
}

func TestDeleteBook_Twice(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())

	resp := ts.api.Delete("/books/" + id)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"success","message":"Book deleted successfully"}`, resp.Body.String())

	resp = ts.api.Delete("/books/" + id)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"status":"fail","message":"delete failed, id not found"}`, resp.Body.String())
}

func TestBooks_PersistAcrossRestart(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())
	ts.createBook(t, map[string]any{"name": "Second", "pageCount": 3, "readPage": 3})

	reopened := store.Open(t.Context(), ts.path, nil)

	assert.Equal(t, ts.store.All(), reopened.All())
	book, err := reopened.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Buku A", book.Name)
}

func TestUpdateBook_NoBody(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, sampleBook())

	resp := ts.api.Put("/books/" + id)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, "Failed to update book. must supply a name", decodeEnvelope[any](t, resp.Body.Bytes()).Message)

	book, err := ts.store.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Buku A", book.Name)
}

func TestBooks_PayloadErrorsAreLocalized(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", "invalid request payload"},
		{"id", "Data permintaan tidak valid"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			ts := setupTestServerWith(t, tt.lang, Options{})

			resp := ts.api.Post("/books", map[string]any{"name": "A", "pageCount": "100"})
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decodeEnvelope[any](t, resp.Body.Bytes())
			assert.Equal(t, "fail", env.Status)
			assert.True(t, strings.HasPrefix(env.Message, tt.want+": "), "got %q", env.Message)
			assert.NotContains(t, env.Message, "validation failed")

			resp = ts.api.Put("/books/xxxxx", "Content-Type: application/json", strings.NewReader(`{"name":`))
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.True(t, strings.HasPrefix(decodeEnvelope[any](t, resp.Body.Bytes()).Message, tt.want))
		})
	}
}

func TestBooks_IndonesianMessages(t *testing.T) {
	ts := setupTestServerWith(t, "id", Options{})

	resp := ts.api.Post("/books", map[string]any{"pageCount": 1})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Gagal menambahkan buku. Mohon isi nama buku", decodeEnvelope[any](t, resp.Body.Bytes()).Message)

	resp = ts.api.Post("/books", map[string]any{"name": "A", "pageCount": 1, "readPage": 2})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Gagal menambahkan buku. readPage tidak boleh lebih besar dari pageCount", decodeEnvelope[any](t, resp.Body.Bytes()).Message)

	resp = ts.api.Post("/books", sampleBook())
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "Buku berhasil ditambahkan", decodeEnvelope[createdData](t, resp.Body.Bytes()).Message)

	resp = ts.api.Get("/books/xxxxx")
	assert.Equal(t, "Buku tidak ditemukan", decodeEnvelope[any](t, resp.Body.Bytes()).Message)

	resp = ts.api.Put("/books/xxxxx", sampleBook())
	assert.Equal(t, "Gagal memperbarui buku. Id tidak ditemukan", decodeEnvelope[any](t, resp.Body.Bytes()).Message)

	resp = ts.api.Delete("/books/xxxxx")
	assert.Equal(t, "Buku gagal dihapus. Id tidak ditemukan", decodeEnvelope[any](t, resp.Body.Bytes()).Message)
}

func TestBookRequest_NilIsEmptyInput(t *testing.T) {
	var req *BookRequest
	assert.Equal(t, domain.BookInput{}, req.toInput())

	req = &BookRequest{Name: "A", PageCount: 3, ReadPage: 2, Reading: true}
	assert.Equal(t, domain.BookInput{Name: "A", PageCount: 3, ReadPage: 2, Reading: true}, req.toInput())
}

func TestNewBookResponse(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	book := domain.NewBook("abc", domain.BookInput{Name: "A", PageCount: 5, ReadPage: 5}, now)

	resp := newBookResponse(book)

	assert.Equal(t, "abc", resp.ID)
	assert.True(t, resp.Finished)
	assert.True(t, now.Equal(resp.InsertedAt.Time))
}
