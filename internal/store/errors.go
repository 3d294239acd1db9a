package store

import "errors"

// ErrBookNotFound is returned when no book has the requested ID.
var ErrBookNotFound = errors.New("book not found")
