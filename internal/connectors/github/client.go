package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/clharvest/internal/core/domain"
	"github.com/custodia-labs/clharvest/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// searchPageSize is the page size for repository search.
	searchPageSize = 100
)

// Client wraps the go-github client behind the RepositorySource port.
type Client struct {
	gh *gh.Client
}

var _ driven.RepositorySource = (*Client)(nil)

// NewClient creates a GitHub client authenticated with a static access
// token. Works for both PAT and OAuth access tokens.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{gh: gh.NewClient(tc)}
}

// NewClientWithGitHub wraps an existing go-github client.
// Useful for tests that point the client at a local server.
func NewClientWithGitHub(ghClient *gh.Client) *Client {
	return &Client{gh: ghClient}
}

// SearchRepositories returns repositories matching query, most-starred
// first. Pagination is followed until the API stops returning pages
// (search results are capped remotely at 1000 entries).
func (c *Client) SearchRepositories(ctx context.Context, query string) ([]domain.Repository, error) {
	opts := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: searchPageSize},
	}

	var all []domain.Repository
	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		result, resp, err := c.gh.Search.Repositories(ctx, query, opts)
		if err != nil {
			return nil, c.wrapError(err, "search repositories")
		}

		for _, r := range result.Repositories {
			all = append(all, toRepository(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ContributorCount counts a repository's contributors by walking the
// contributor listing. Repositories with very long histories make GitHub
// refuse this listing, which callers handle with a sentinel.
func (c *Client) ContributorCount(ctx context.Context, repo domain.Repository) (int, error) {
	opts := &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{PerPage: searchPageSize},
	}

	count := 0
	for {
		contributors, resp, err := c.gh.Repositories.ListContributors(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return 0, c.wrapError(err, "list contributors")
		}
		count += len(contributors)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return count, nil
}

// Tree fetches the entire recursive tree for the repository's default
// branch in one API call.
func (c *Client) Tree(ctx context.Context, repo domain.Repository) ([]domain.TreeEntry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, repo.Owner, repo.Name, repo.DefaultBranch, true)
	if err != nil {
		return nil, c.wrapError(err, "get tree")
	}

	entries := make([]domain.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, domain.TreeEntry{
			Path: e.GetPath(),
			URL:  e.GetURL(),
			SHA:  e.GetSHA(),
			Size: e.GetSize(),
		})
	}
	return entries, nil
}

// Blob fetches a blob by checksum and decodes it from its transport
// encoding to text.
func (c *Client) Blob(ctx context.Context, repo domain.Repository, sha string) (string, error) {
	blob, _, err := c.gh.Git.GetBlob(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return "", c.wrapError(err, "get blob")
	}

	if blob.GetEncoding() == "base64" {
		// The API wraps base64 payloads with newlines.
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return "", fmt.Errorf("decode blob %s: %w", sha, err)
		}
		return string(decoded), nil
	}

	return blob.GetContent(), nil
}

// RemainingQuota queries the remote's remaining core request quota.
func (c *Client) RemainingQuota(ctx context.Context) (int, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return 0, c.wrapError(err, "get rate limit")
	}
	return limits.GetCore().Remaining, nil
}

// toRepository converts a search result into the domain record.
func toRepository(r *gh.Repository) domain.Repository {
	return domain.Repository{
		URL:           r.GetURL(),
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		Fork:          r.GetFork(),
		Stars:         r.GetStargazersCount(),
		Contributors:  domain.ContributorsUnknown,
		Forks:         r.GetForksCount(),
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
		DefaultBranch: r.GetDefaultBranch(),
	}
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
