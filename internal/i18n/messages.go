// Package i18n holds the user-facing message catalogs for the book API.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a user-facing message.
type Key string

// Message keys.
const (
	AddSuccess         Key = "add.success"
	AddNameRequired    Key = "add.name_required"
	AddReadPage        Key = "add.read_page"
	GetNotFound        Key = "get.not_found"
	UpdateSuccess      Key = "update.success"
	UpdateNameRequired Key = "update.name_required"
	UpdateReadPage     Key = "update.read_page"
	UpdateNotFound     Key = "update.not_found"
	DeleteSuccess      Key = "delete.success"
	DeleteNotFound     Key = "delete.not_found"
	InvalidPayload     Key = "request.invalid_payload"
)

var supported = []language.Tag{language.English, language.Indonesian}

var translations = map[language.Tag]map[Key]string{
	language.English: {
		AddSuccess:         "Book added successfully",
		AddNameRequired:    "Failed to add book. must supply a name",
		AddReadPage:        "Failed to add book. readPage cannot exceed pageCount",
		GetNotFound:        "book not found",
		UpdateSuccess:      "Book updated successfully",
		UpdateNameRequired: "Failed to update book. must supply a name",
		UpdateReadPage:     "Failed to update book. readPage cannot exceed pageCount",
		UpdateNotFound:     "update failed, id not found",
		DeleteSuccess:      "Book deleted successfully",
		DeleteNotFound:     "delete failed, id not found",
		InvalidPayload:     "invalid request payload",
	},
	language.Indonesian: {
		AddSuccess:         "Buku berhasil ditambahkan",
		AddNameRequired:    "Gagal menambahkan buku. Mohon isi nama buku",
		AddReadPage:        "Gagal menambahkan buku. readPage tidak boleh lebih besar dari pageCount",
		GetNotFound:        "Buku tidak ditemukan",
		UpdateSuccess:      "Buku berhasil diperbarui",
		UpdateNameRequired: "Gagal memperbarui buku. Mohon isi nama buku",
		UpdateReadPage:     "Gagal memperbarui buku. readPage tidak boleh lebih besar dari pageCount",
		UpdateNotFound:     "Gagal memperbarui buku. Id tidak ditemukan",
		DeleteSuccess:      "Buku berhasil dihapus",
		DeleteNotFound:     "Buku gagal dihapus. Id tidak ditemukan",
		InvalidPayload:     "Data permintaan tidak valid",
	},
}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, string(key), msg); err != nil {
				panic(fmt.Sprintf("i18n: register %s/%s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Messages renders catalog entries for one language. Safe for concurrent use.
type Messages struct {
	tag language.Tag
}

// New returns the messages for lang ("en", "id", or any BCP 47 tag that
// matches one of them).
func New(lang string) (*Messages, error) {
	requested, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}

	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}

	return &Messages{tag: supported[idx]}, nil
}

// MustNew is like New but panics on an unsupported language.
func MustNew(lang string) *Messages {
	m, err := New(lang)
	if err != nil {
		panic(err)
	}
	return m
}

// Get returns the localized text for key.
func (m *Messages) Get(key Key) string {
	return message.NewPrinter(m.tag, message.Catalog(cat)).Sprintf(string(key))
}

// Language returns the matched language tag.
func (m *Messages) Language() language.Tag {
	return m.tag
}

// Supported reports whether lang resolves to a shipped catalog.
func Supported(lang string) bool {
	_, err := New(lang)
	return err == nil
}
