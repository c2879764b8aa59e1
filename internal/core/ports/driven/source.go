package driven

import (
	"context"

	"github.com/custodia-labs/clharvest/internal/core/domain"
)

// RepositorySource is the remote hosting platform, seen through the four
// operations the harvest needs. It is an opaque HTTP/JSON service; the
// adapter owns authentication and transport.
type RepositorySource interface {
	// SearchRepositories returns repositories matching the query,
	// sorted by popularity (most-starred first).
	SearchRepositories(ctx context.Context, query string) ([]domain.Repository, error)

	// ContributorCount counts the repository's contributors.
	ContributorCount(ctx context.Context, repo domain.Repository) (int, error)

	// Tree enumerates the repository's full recursive file listing at
	// its default branch, in the remote's listing order.
	Tree(ctx context.Context, repo domain.Repository) ([]domain.TreeEntry, error)

	// Blob retrieves a blob's content by checksum, decoded from its
	// transport encoding to text.
	Blob(ctx context.Context, repo domain.Repository, sha string) (string, error)

	// RemainingQuota returns the remote's remaining request quota.
	RemainingQuota(ctx context.Context) (int, error)
}

// Gate blocks the caller until it is polite to make more remote calls.
// Implementations query the remote quota and wait for recovery when it
// runs low; quota exhaustion is never surfaced to callers as an error.
type Gate interface {
	Ensure(ctx context.Context) error
}
