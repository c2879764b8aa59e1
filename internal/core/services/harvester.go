package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clharvest/internal/core/domain"
	"github.com/custodia-labs/clharvest/internal/core/ports/driven"
	"github.com/custodia-labs/clharvest/internal/logger"
)

// Harvester drives the overall walk: per query term it enumerates
// candidate repositories, and for each changed repository enumerates its
// file tree and re-fetches the files whose checksums moved.
//
// Execution is strictly sequential: one outstanding remote call at a
// time. Suspension happens only inside the gate's wait loop and inside
// blocking network calls.
type Harvester struct {
	source   driven.RepositorySource
	store    driven.HarvestStore
	gate     driven.Gate
	detector *ChangeDetector
	stats    *domain.HarvestStats

	terms      []string
	extensions []string
}

// NewHarvester wires an orchestrator. terms are the search query terms;
// extensions are the tracked path suffixes (".cl", ".ocl").
func NewHarvester(
	source driven.RepositorySource,
	store driven.HarvestStore,
	gate driven.Gate,
	stats *domain.HarvestStats,
	terms []string,
	extensions []string,
) *Harvester {
	return &Harvester{
		source:     source,
		store:      store,
		gate:       gate,
		detector:   NewChangeDetector(store),
		stats:      stats,
		terms:      terms,
		extensions: extensions,
	}
}

// Run executes one full harvest over every query term and records the
// run when it completes. Errors at search or store level abort the run;
// per-repository and per-file failures are absorbed by the asymmetric
// recovery policy.
func (h *Harvester) Run(ctx context.Context) error {
	run := domain.HarvestRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	for _, term := range h.terms {
		query := term + " fork:true"
		logger.Debug("searching %q", query)

		if err := h.gate.Ensure(ctx); err != nil {
			return err
		}
		repos, err := h.source.SearchRepositories(ctx, query)
		if err != nil {
			return err
		}

		for _, repo := range repos {
			changed, err := h.processRepository(ctx, repo)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			if err := h.walkTree(ctx, repo); err != nil {
				return err
			}
		}
	}

	run.FinishedAt = time.Now().UTC()
	run.Stats = h.stats.Snapshot()
	return h.store.SaveRun(ctx, run)
}

// processRepository classifies one candidate and, when changed, replaces
// its record wholesale. It reports whether the repository's tree should
// be walked: an unchanged repository costs no further remote calls at
// all, which is the main saving of the whole protocol.
func (h *Harvester) processRepository(ctx context.Context, repo domain.Repository) (bool, error) {
	if err := h.gate.Ensure(ctx); err != nil {
		return false, err
	}
	h.stats.SetCurrent(repo.Name)

	changed, known, err := h.detector.ClassifyRepository(ctx, repo.URL, repo.FreshnessToken())
	if err != nil {
		return false, err
	}
	if !changed {
		h.stats.RepoUnchanged()
		return false, nil
	}

	// Contributor enumeration is the one lookup the remote routinely
	// refuses (too many contributors, disabled stats). The record is
	// still written, with the sentinel.
	contributors, err := h.source.ContributorCount(ctx, repo)
	if err != nil {
		logger.Debug("contributor count for %s: %v", repo.FullName(), err)
		contributors = domain.ContributorsUnknown
	}
	repo.Contributors = contributors

	if err := h.store.UpsertRepository(ctx, repo); err != nil {
		return false, err
	}

	if known {
		h.stats.RepoModified()
	} else {
		h.stats.RepoNew()
	}
	return true, nil
}

// walkTree enumerates a repository's recursive tree and processes every
// tracked file. A tree enumeration failure (an empty repository, most
// commonly) aborts this repository silently: without a tree every file
// operation is meaningless. A single file failure only costs that file.
func (h *Harvester) walkTree(ctx context.Context, repo domain.Repository) error {
	tree, err := h.source.Tree(ctx, repo)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Debug("tree for %s: %v", repo.FullName(), err)
		return nil
	}

	resolver := NewIncludeResolver(h.source, repo, tree)
	for _, entry := range tree {
		if !h.tracked(entry.Path) {
			continue
		}
		if err := h.processFile(ctx, repo, resolver, entry); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Debug("file %s/%s: %v", repo.FullName(), entry.Path, err)
			h.stats.Error()
		}
	}
	return nil
}

// processFile classifies one tracked file by checksum and, when changed,
// resolves its includes and replaces both records wholesale.
func (h *Harvester) processFile(ctx context.Context, repo domain.Repository, resolver *IncludeResolver, entry domain.TreeEntry) error {
	h.stats.SetCurrent(repo.Name + "/" + entry.Path)

	changed, known, err := h.detector.ClassifyFile(ctx, entry.URL, entry.SHA)
	if err != nil {
		return err
	}
	if !changed {
		h.stats.FileUnchanged()
		return nil
	}

	content, err := resolver.Resolve(ctx, entry)
	if err != nil {
		return err
	}

	meta := domain.FileMeta{
		URL:     entry.URL,
		Path:    entry.Path,
		RepoURL: repo.URL,
		SHA:     entry.SHA,
		Size:    entry.Size,
	}
	if err := h.store.UpsertFile(ctx, meta, content); err != nil {
		return err
	}

	if known {
		h.stats.FileModified()
	} else {
		h.stats.FileNew()
	}
	return nil
}

// tracked reports whether a tree path carries one of the recognized
// domain-specific extensions. Everything else produces no record.
func (h *Harvester) tracked(path string) bool {
	for _, ext := range h.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
