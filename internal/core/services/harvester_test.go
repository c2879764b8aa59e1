package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clharvest/internal/core/domain"
)

// fakeStore implements driven.HarvestStore in memory.
type fakeStore struct {
	repoTokens map[string]string
	fileTokens map[string]string

	repos map[string]domain.Repository
	files map[string]storedFile
	runs  []domain.HarvestRun

	repoWrites int
	fileWrites int
	tokenErr   error
}

type storedFile struct {
	meta    domain.FileMeta
	content string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		repoTokens: map[string]string{},
		fileTokens: map[string]string{},
		repos:      map[string]domain.Repository{},
		files:      map[string]storedFile{},
	}
}

func (f *fakeStore) UpsertRepository(_ context.Context, repo domain.Repository) error {
	f.repoWrites++
	f.repos[repo.URL] = repo
	f.repoTokens[repo.URL] = repo.FreshnessToken()
	return nil
}

func (f *fakeStore) RepositoryToken(_ context.Context, url string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	token, ok := f.repoTokens[url]
	if !ok {
		return "", domain.ErrNotFound
	}
	return token, nil
}

func (f *fakeStore) UpsertFile(_ context.Context, meta domain.FileMeta, content string) error {
	f.fileWrites++
	f.files[meta.URL] = storedFile{meta: meta, content: content}
	f.fileTokens[meta.URL] = meta.SHA
	return nil
}

func (f *fakeStore) FileToken(_ context.Context, url string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	token, ok := f.fileTokens[url]
	if !ok {
		return "", domain.ErrNotFound
	}
	return token, nil
}

func (f *fakeStore) SaveRun(_ context.Context, run domain.HarvestRun) error {
	f.runs = append(f.runs, run)
	return nil
}

// fakeGate counts Ensure calls and never blocks.
type fakeGate struct {
	calls int
}

func (g *fakeGate) Ensure(_ context.Context) error {
	g.calls++
	return nil
}

func testRepo(url string) domain.Repository {
	return domain.Repository{
		URL:           url,
		Owner:         "alice",
		Name:          "kernels",
		Stars:         42,
		Forks:         3,
		CreatedAt:     time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		DefaultBranch: "master",
	}
}

func newTestHarvester(source *fakeSource, store *fakeStore, gate *fakeGate) (*Harvester, *domain.HarvestStats) {
	stats := domain.NewHarvestStats()
	h := NewHarvester(source, store, gate, stats,
		[]string{"opencl"}, []string{".cl", ".ocl"})
	return h, stats
}

func TestHarvester_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("changed repository with tracked file is persisted flattened", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		source.contributors["r-1"] = 7
		source.trees["r-1"] = []domain.TreeEntry{
			{Path: "kernel.cl", URL: "u-k", SHA: "sha-k", Size: 40},
			{Path: "common.h", URL: "u-h", SHA: "sha-h", Size: 20},
		}
		source.blobs["sha-k"] = "#include \"common.h\"\nkernel void f() {}"
		source.blobs["sha-h"] = "#define WIDTH 4"
		store := newFakeStore()
		harvester, stats := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		snap := stats.Snapshot()
		assert.Equal(t, 1, snap.ReposNew)
		assert.Equal(t, 1, snap.FilesNew)
		assert.Equal(t, 0, snap.Errors)

		saved := store.repos["r-1"]
		assert.Equal(t, 7, saved.Contributors)

		// Only the tracked extension produced a record; the header was
		// inlined, not stored on its own.
		require.Len(t, store.files, 1)
		file := store.files["u-k"]
		assert.Equal(t, "#define WIDTH 4\nkernel void f() {}", file.content)
		assert.Equal(t, "sha-k", file.meta.SHA)
		assert.Equal(t, "kernel.cl", file.meta.Path)
		assert.Equal(t, "r-1", file.meta.RepoURL)
	})

	t.Run("unchanged repository skips the tree walk entirely", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		store := newFakeStore()
		store.repoTokens["r-1"] = repo.FreshnessToken()
		harvester, stats := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		snap := stats.Snapshot()
		assert.Equal(t, 1, snap.ReposUnchanged)
		assert.Zero(t, store.repoWrites)
		assert.Zero(t, store.fileWrites)
		assert.Zero(t, source.treeGets)
	})

	t.Run("unchanged file in a fresh repository is skipped without write", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		source.trees["r-1"] = []domain.TreeEntry{
			{Path: "kernel.cl", URL: "u-k", SHA: "sha-k", Size: 40},
		}
		store := newFakeStore()
		// Repository is new to the store, but the file's checksum is
		// already present from an earlier run.
		store.fileTokens["u-k"] = "sha-k"
		harvester, stats := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		snap := stats.Snapshot()
		assert.Equal(t, 1, snap.ReposNew)
		assert.Equal(t, 1, snap.FilesUnchanged)
		assert.Zero(t, store.fileWrites)
	})

	t.Run("modified repository and file increment modified counters", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		source.trees["r-1"] = []domain.TreeEntry{
			{Path: "kernel.cl", URL: "u-k", SHA: "sha-new", Size: 40},
		}
		source.blobs["sha-new"] = "kernel void f() {}"
		store := newFakeStore()
		store.repoTokens["r-1"] = "2014-01-01T00:00:00Z"
		store.fileTokens["u-k"] = "sha-old"
		harvester, stats := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		snap := stats.Snapshot()
		assert.Equal(t, 1, snap.ReposModified)
		assert.Equal(t, 1, snap.FilesModified)
	})

	t.Run("tree enumeration failure aborts the repository silently", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		source.treeErr["r-1"] = errors.New("409 empty repository")
		store := newFakeStore()
		harvester, stats := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		snap := stats.Snapshot()
		assert.Equal(t, 1, snap.ReposNew) // record was already written
		assert.Zero(t, snap.Errors)
		assert.Zero(t, store.fileWrites)
	})

	t.Run("one bad file does not cost the rest of the tree", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		source.trees["r-1"] = []domain.TreeEntry{
			{Path: "broken.cl", URL: "u-b", SHA: "sha-b", Size: 10},
			{Path: "good.ocl", URL: "u-g", SHA: "sha-g", Size: 10},
		}
		source.blobErr["sha-b"] = errors.New("unreadable")
		source.blobs["sha-g"] = "kernel void g() {}"
		store := newFakeStore()
		harvester, stats := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		snap := stats.Snapshot()
		assert.Equal(t, 1, snap.Errors)
		assert.Equal(t, 1, snap.FilesNew)
		require.Len(t, store.files, 1)
		assert.Contains(t, store.files, "u-g")
	})

	t.Run("contributor failure records the sentinel", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		source.contributorErr = errors.New("403 too large")
		store := newFakeStore()
		harvester, _ := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		assert.Equal(t, domain.ContributorsUnknown, store.repos["r-1"].Contributors)
	})

	t.Run("gate is consulted before search and before each repository", func(t *testing.T) {
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{testRepo("r-1"), testRepo("r-2")}
		gate := &fakeGate{}
		harvester, _ := newTestHarvester(source, newFakeStore(), gate)

		require.NoError(t, harvester.Run(ctx))

		// One per search plus one per candidate repository.
		assert.Equal(t, 3, gate.calls)
	})

	t.Run("completed run is recorded with final counters", func(t *testing.T) {
		repo := testRepo("r-1")
		source := newFakeSource()
		source.repos["opencl fork:true"] = []domain.Repository{repo}
		store := newFakeStore()
		store.repoTokens["r-1"] = repo.FreshnessToken()
		harvester, _ := newTestHarvester(source, store, &fakeGate{})

		require.NoError(t, harvester.Run(ctx))

		require.Len(t, store.runs, 1)
		run := store.runs[0]
		assert.NotEmpty(t, run.ID)
		assert.False(t, run.StartedAt.IsZero())
		assert.False(t, run.FinishedAt.IsZero())
		assert.Equal(t, 1, run.Stats.ReposUnchanged)
	})
}
