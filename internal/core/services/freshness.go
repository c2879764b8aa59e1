package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/clharvest/internal/core/domain"
	"github.com/custodia-labs/clharvest/internal/core/ports/driven"
)

// ChangeDetector decides whether a remote entity needs re-fetching by
// comparing its freshness token against the locally stored one.
//
// Classification is deliberately binary: any mismatch, including "no
// record found", means changed. The downstream action is identical for
// new and modified entities (wholesale delete + reinsert); the two cases
// differ only in which counter increments, which is what the known
// return value feeds.
type ChangeDetector struct {
	store driven.HarvestStore
}

// NewChangeDetector creates a detector backed by the given store.
func NewChangeDetector(store driven.HarvestStore) *ChangeDetector {
	return &ChangeDetector{store: store}
}

// ClassifyRepository compares a repository's last-modified token against
// the stored record. known reports whether a record existed at all.
func (d *ChangeDetector) ClassifyRepository(ctx context.Context, url, token string) (changed, known bool, err error) {
	stored, err := d.store.RepositoryToken(ctx, url)
	return classify(stored, token, err)
}

// ClassifyFile compares a file's content checksum against the stored
// record. known reports whether a record existed at all.
func (d *ChangeDetector) ClassifyFile(ctx context.Context, url, sha string) (changed, known bool, err error) {
	stored, err := d.store.FileToken(ctx, url)
	return classify(stored, sha, err)
}

// classify maps a token lookup onto the binary freshness outcome.
// Tokens are compared with exact string equality.
func classify(stored, remote string, err error) (changed, known bool, _ error) {
	if errors.Is(err, domain.ErrNotFound) {
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return stored != remote, true, nil
}
