// Package id generates opaque record identifiers.
package id

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// maxAttempts bounds collision retries in Unique.
const maxAttempts = 8

// ErrExhausted is returned when Unique cannot find a free ID.
var ErrExhausted = errors.New("id: no unique id after retries")

// Generate returns a 21 character NanoID using the URL-safe alphabet.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// Unique generates IDs until taken reports one as free.
// taken is called with the lock of the caller's collection already held.
func Unique(taken func(string) bool) (string, error) {
	for range maxAttempts {
		id, err := Generate()
		if err != nil {
			return "", err
		}
		if !taken(id) {
			return id, nil
		}
	}
	return "", ErrExhausted
}

// MustGenerate is like Generate but panics if ID generation fails.
// Only for seed data and tests.
func MustGenerate() string {
	id, err := Generate()
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
