package services

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/custodia-labs/clharvest/internal/core/domain"
	"github.com/custodia-labs/clharvest/internal/core/ports/driven"
)

// includePattern matches a textual inclusion directive: optional leading
// word characters, then #include, then a quoted or angle-bracketed path.
var includePattern = regexp.MustCompile(`^\w*#include ["<](.*)[">]`)

// Marker lines emitted in place of directives that could not be inlined.
// The original directive text is preserved after the marker.
const (
	markerNotFound = "// [FETCH] didnt find: "
	markerSkipped  = "// [FETCH] skipped: "
)

// IncludeResolver fetches a file's raw content and recursively inlines
// local include directives, producing one flattened, self-contained
// source text.
//
// Included paths resolve against the repository's already-enumerated
// recursive tree: parent-directory segments are stripped best-effort and
// the first entry whose path ends with the normalized name wins, in tree
// listing order. That is a heuristic, not full path algebra, and it is
// preserved as-is.
type IncludeResolver struct {
	source driven.RepositorySource
	repo   domain.Repository
	tree   []domain.TreeEntry
}

// NewIncludeResolver creates a resolver over a repository's full tree.
func NewIncludeResolver(source driven.RepositorySource, repo domain.Repository, tree []domain.TreeEntry) *IncludeResolver {
	return &IncludeResolver{source: source, repo: repo, tree: tree}
}

// Resolve flattens one file. It fails with a *domain.FetchError when the
// remote content of the file, or of any transitively included file,
// cannot be retrieved or decoded.
func (r *IncludeResolver) Resolve(ctx context.Context, entry domain.TreeEntry) (string, error) {
	return r.resolve(ctx, entry, nil)
}

// resolve is the recursive worker. ancestors is the immutable chain of
// locators from the root file down to the caller; each level passes an
// extended copy downward, so no stack is shared across recursive calls.
func (r *IncludeResolver) resolve(ctx context.Context, entry domain.TreeEntry, ancestors []string) (string, error) {
	chain := append(slices.Clone(ancestors), entry.URL)

	raw, err := r.source.Blob(ctx, r.repo, entry.SHA)
	if err != nil {
		return "", &domain.FetchError{Locator: entry.URL, Err: err}
	}

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		match := includePattern.FindStringSubmatch(line)
		if match == nil {
			out = append(out, line)
			continue
		}

		// Best-effort relative path resolution.
		name := strings.ReplaceAll(match[1], "../", "")

		target, found := r.lookup(name)
		switch {
		case !found:
			out = append(out, markerNotFound+line)
		case slices.Contains(chain, target.URL):
			// Already being resolved somewhere up the chain;
			// recursing would never terminate.
			out = append(out, markerSkipped+line)
		default:
			flattened, err := r.resolve(ctx, target, chain)
			if err != nil {
				return "", err
			}
			out = append(out, flattened)
		}
	}

	return strings.Join(out, "\n"), nil
}

// lookup returns the first tree entry whose path ends with name, in tree
// listing order.
func (r *IncludeResolver) lookup(name string) (domain.TreeEntry, bool) {
	for _, entry := range r.tree {
		if strings.HasSuffix(entry.Path, name) {
			return entry, true
		}
	}
	return domain.TreeEntry{}, false
}
