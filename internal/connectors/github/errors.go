package github

import (
	"errors"
	"fmt"
)

// GitHub-specific errors.
var (
	// ErrEmptyRepository indicates the remote reported the repository
	// as empty, so no tree exists to enumerate.
	ErrEmptyRepository = errors.New("github: repository is empty")
)

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsEmptyRepository checks if the error indicates an empty repository.
// GitHub answers tree requests against empty repositories with 409.
func IsEmptyRepository(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 409
	}
	return errors.Is(err, ErrEmptyRepository)
}
