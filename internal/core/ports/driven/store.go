package driven

import (
	"context"

	"github.com/custodia-labs/clharvest/internal/core/domain"
)

// RepositoryStore persists repository records.
type RepositoryStore interface {
	// UpsertRepository replaces the record for repo.URL wholesale
	// (delete-by-identity then insert) as one unit of work.
	UpsertRepository(ctx context.Context, repo domain.Repository) error

	// RepositoryToken returns the stored freshness token (last-modified
	// timestamp) for a repository URL, or domain.ErrNotFound.
	RepositoryToken(ctx context.Context, url string) (string, error)
}

// FileStore persists file metadata and flattened content as a pair.
type FileStore interface {
	// UpsertFile replaces both records for meta.URL wholesale, deleting
	// the old pair before inserting the new one, as one unit of work.
	UpsertFile(ctx context.Context, meta domain.FileMeta, content string) error

	// FileToken returns the stored freshness token (content checksum)
	// for a blob URL, or domain.ErrNotFound.
	FileToken(ctx context.Context, url string) (string, error)
}

// RunStore persists harvest run records.
type RunStore interface {
	// SaveRun records a completed harvest run.
	SaveRun(ctx context.Context, run domain.HarvestRun) error
}

// HarvestStore is the full persistence surface the orchestrator needs.
type HarvestStore interface {
	RepositoryStore
	FileStore
	RunStore
}
