package domain

// FileMeta describes a harvested file. It always travels with the file's
// flattened content: the store writes and deletes the two together, so the
// read view never observes a content record without its metadata.
type FileMeta struct {
	// URL is the canonical blob URL, shared with the content record.
	URL string

	// Path is the repository-relative path.
	Path string

	// RepoURL is a weak back-reference to the owning repository.
	// It is not an enforced foreign key.
	RepoURL string

	// SHA is the content checksum and the file's freshness token.
	SHA string

	// Size is the raw byte size before include flattening.
	Size int
}
