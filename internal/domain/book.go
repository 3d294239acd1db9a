// Package domain contains the core business entities of the bookshelf.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Book is a single record in the shelf's collection.
// Its JSON form (see MarshalJSON) is the same in the books file and in API responses.
type Book struct {
	InsertedAt time.Time `json:"insertedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Author     string    `json:"author"`
	Summary    string    `json:"summary"`
	Publisher  string    `json:"publisher"`
	Year       int       `json:"year"`
	PageCount  int       `json:"pageCount"`
	ReadPage   int       `json:"readPage"`
	Finished   bool      `json:"finished"`
	Reading    bool      `json:"reading"`
}

// TimestampLayout is ISO 8601 in UTC with exactly three fraction digits,
// the form timestamps take both in the books file and on the wire.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// bookJSON fixes the persisted key order and timestamp form.
type bookJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Year       int    `json:"year"`
	Author     string `json:"author"`
	Summary    string `json:"summary"`
	Publisher  string `json:"publisher"`
	PageCount  int    `json:"pageCount"`
	ReadPage   int    `json:"readPage"`
	Finished   bool   `json:"finished"`
	Reading    bool   `json:"reading"`
	InsertedAt string `json:"insertedAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// MarshalJSON writes id first and timestamps in TimestampLayout.
func (b Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookJSON{
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
		InsertedAt: formatTimestamp(b.InsertedAt),
		UpdatedAt:  formatTimestamp(b.UpdatedAt),
	})
}

// UnmarshalJSON accepts any RFC 3339 timestamp, with or without fractional seconds.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw bookJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	insertedAt, err := parseTimestamp(raw.InsertedAt)
	if err != nil {
		return fmt.Errorf("insertedAt: %w", err)
	}
	updatedAt, err := parseTimestamp(raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}

	*b = Book{
		InsertedAt: insertedAt,
		UpdatedAt:  updatedAt,
		ID:         raw.ID,
		Name:       raw.Name,
		Author:     raw.Author,
		Summary:    raw.Summary,
		Publisher:  raw.Publisher,
		Year:       raw.Year,
		PageCount:  raw.PageCount,
		ReadPage:   raw.ReadPage,
		Finished:   raw.Finished,
		Reading:    raw.Reading,
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// BookInput is the client-supplied field set for create and full update.
type BookInput struct {
	Name      string `json:"name" validate:"required"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	PageCount int    `json:"pageCount"`
	ReadPage  int    `json:"readPage" validate:"ltefield=PageCount"`
	Reading   bool   `json:"reading"`
}

// BookSummary is the list projection of a book.
type BookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// Now returns the timestamp used for InsertedAt and UpdatedAt.
// Millisecond precision in UTC so persisted values reload unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewBook builds a record from input. Finished is derived here and only here.
func NewBook(id string, in BookInput, now time.Time) Book {
	b := Book{
		ID:         id,
		Finished:   in.PageCount == in.ReadPage,
		InsertedAt: now,
		UpdatedAt:  now,
	}
	b.assign(in)
	return b
}

// Apply replaces every client-owned field and refreshes UpdatedAt.
// ID, InsertedAt and Finished are left as they are.
func (b *Book) Apply(in BookInput, now time.Time) {
	b.assign(in)
	b.UpdatedAt = now
}

func (b *Book) assign(in BookInput) {
	b.Name = in.Name
	b.Year = in.Year
	b.Author = in.Author
	b.Summary = in.Summary
	b.Publisher = in.Publisher
	b.PageCount = in.PageCount
	b.ReadPage = in.ReadPage
	b.Reading = in.Reading
}

// Summarize returns the list projection.
func (b Book) Summarize() BookSummary {
	return BookSummary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

// BookFilter selects books for listing. Nil flags and an empty name match everything.
type BookFilter struct {
	Reading  *bool
	Finished *bool
	Name     string
}

// ParseFlag reads a query flag the way clients send it: "1" is true,
// any other present value is false.
func ParseFlag(v string) *bool {
	b := v == "1"
	return &b
}

// Matcher returns a predicate applying all filter criteria conjunctively.
// The name criterion is a case-insensitive substring match.
func (f BookFilter) Matcher() func(Book) bool {
	fold := cases.Fold()
	needle := fold.String(f.Name)

	return func(b Book) bool {
		if needle != "" && !strings.Contains(fold.String(b.Name), needle) {
			return false
		}
		if f.Reading != nil && b.Reading != *f.Reading {
			return false
		}
		if f.Finished != nil && b.Finished != *f.Finished {
			return false
		}
		return true
	}
}
