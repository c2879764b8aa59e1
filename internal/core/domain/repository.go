package domain

import "time"

// ContributorsUnknown is the sentinel stored when the contributor count
// cannot be retrieved for a repository.
const ContributorsUnknown = -1

// Repository represents a remote repository discovered via search.
// The canonical API URL is its identity; at most one record exists per URL.
type Repository struct {
	// URL is the canonical API URL and the unique key for persistence.
	URL string

	// Owner identifies the repository owner (login name).
	Owner string

	// Name is the repository's display name.
	Name string

	// Fork reports whether the repository is a fork.
	Fork bool

	// Stars is the stargazer count at observation time.
	Stars int

	// Contributors is the contributor count, or ContributorsUnknown
	// when the remote refused to enumerate contributors.
	Contributors int

	// Forks is the fork count at observation time.
	Forks int

	// CreatedAt is the repository's creation timestamp.
	CreatedAt time.Time

	// UpdatedAt is the last-modified timestamp. Its string form is the
	// freshness token compared against the stored record.
	UpdatedAt time.Time

	// DefaultBranch is the branch whose tree gets enumerated.
	// Operational only, never persisted.
	DefaultBranch string
}

// FreshnessToken returns the token used to decide whether the repository
// needs re-harvesting. Comparison is exact string equality.
func (r Repository) FreshnessToken() string {
	return r.UpdatedAt.UTC().Format(time.RFC3339)
}

// FullName returns the owner-qualified repository name.
func (r Repository) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// TreeEntry is one file or directory record within a repository's
// recursive listing at a given branch.
type TreeEntry struct {
	// Path is the repository-relative path.
	Path string

	// URL is the canonical blob URL and the unique key for file records.
	URL string

	// SHA is the content checksum, used as the file freshness token.
	SHA string

	// Size is the raw byte size reported by the remote.
	Size int
}
