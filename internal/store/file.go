package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// FileStore reads and writes the whole collection as one JSON array.
type FileStore struct {
	path string

	mu      sync.Mutex
	lastSum [sha256.Size]byte // digest of the bytes last read or written
}

// NewFileStore returns a FileStore backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and parses the whole file. An empty file is an empty collection.
// A missing file returns an error satisfying errors.Is(err, fs.ErrNotExist).
func (f *FileStore) Load() ([]domain.Book, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read books file: %w", err)
	}

	books, err := decode(data)
	if err != nil {
		return nil, err
	}

	f.remember(data)
	return books, nil
}

// LoadChanged is like Load but reports changed=false, without parsing, when
// the file still holds the bytes this FileStore last read or wrote.
func (f *FileStore) LoadChanged() (books []domain.Book, changed bool, err error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, false, fmt.Errorf("read books file: %w", err)
	}

	sum := sha256.Sum256(data)
	f.mu.Lock()
	same := sum == f.lastSum
	f.mu.Unlock()
	if same {
		return nil, false, nil
	}

	books, err = decode(data)
	if err != nil {
		return nil, false, err
	}

	f.remember(data)
	return books, true, nil
}

// Save writes the full collection, pretty-printed, replacing the file.
// The bytes go to a temp file in the same directory which is then renamed
// over the target, so readers never observe a half-written array.
func (f *FileStore) Save(books []domain.Book) error {
	if books == nil {
		books = []domain.Book{}
	}

	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace books file: %w", err)
	}

	f.remember(data)
	return nil
}

func (f *FileStore) remember(data []byte) {
	sum := sha256.Sum256(data)
	f.mu.Lock()
	f.lastSum = sum
	f.mu.Unlock()
}

func writeAndClose(tmp *os.File, data []byte) error {
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

func decode(data []byte) ([]domain.Book, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Book{}, nil
	}

	var books []domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse books file: %w", err)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}
