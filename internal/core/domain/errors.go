package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates a required credential was not supplied.
	// Fatal at startup.
	ErrMissingCredential = errors.New("missing credential")
)

// FetchError indicates a file's remote content could not be retrieved or
// decoded. Recovered at file granularity: the harvest counts it and moves
// to the next tree entry.
type FetchError struct {
	// Locator identifies the file that failed (blob URL or path).
	Locator string

	// Err is the underlying retrieval or decode failure.
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is a file fetch/decode failure.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
