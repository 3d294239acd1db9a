package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveWritesPrettyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "books.json")
	f := NewFileStore(path)

	book := domain.NewBook("b1", domain.BookInput{Name: "A", PageCount: 10, ReadPage: 10}, domain.Now())
	require.NoError(t, f.Save([]domain.Book{book}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n"), "expected two-space indented array, got %q", data)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{"id", "name", "year", "author", "summary", "publisher", "pageCount", "readPage", "finished", "reading", "insertedAt", "updatedAt"} {
		assert.Contains(t, raw[0], key)
	}
	assert.Equal(t, true, raw[0]["finished"])
}

func TestFileStore_SaveFixedMillisecondTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	f := NewFileStore(path)

	at := time.Date(2026, 3, 4, 5, 6, 27, 900_000_000, time.UTC)
	require.NoError(t, f.Save([]domain.Book{domain.NewBook("b1", domain.BookInput{Name: "A"}, at)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"b1\","), "id should lead each record, got %q", data)
	assert.Contains(t, string(data), `"insertedAt": "2026-03-04T05:06:27.900Z"`)

	books, err := f.Load()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.True(t, at.Equal(books[0].InsertedAt))
}

func TestFileStore_SaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	f := NewFileStore(path)

	require.NoError(t, f.Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewFileStore(filepath.Join(dir, "books.json"))

	for range 3 {
		require.NoError(t, f.Save([]domain.Book{}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "books.json", entries[0].Name())
}

func TestFileStore_LoadMissing(t *testing.T) {
	f := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := f.Load()
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFileStore_LoadEmptyAndNull(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{"empty": "  \n", "null": "null"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			books, err := NewFileStore(path).Load()
			require.NoError(t, err)
			assert.NotNil(t, books)
			assert.Empty(t, books)
		})
	}
}

func TestFileStore_LoadChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	f := NewFileStore(path)
	require.NoError(t, f.Save([]domain.Book{}))

	_, changed, err := f.LoadChanged()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","name":"X"}]`), 0o644))

	books, changed, err := f.LoadChanged()
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, books, 1)
	assert.Equal(t, "x", books[0].ID)

	// Second read of the same bytes is not a change.
	_, changed, err = f.LoadChanged()
	require.NoError(t, err)
	assert.False(t, changed)
}
