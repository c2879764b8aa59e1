package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/clharvest/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/clharvest/internal/core/domain"
	"github.com/custodia-labs/clharvest/internal/core/ports/driven"
)

// Store is the SQLite-backed harvest store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.HarvestStore = (*Store)(nil)

// NewStore opens (or creates) the database at path and brings its schema
// up to date.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path: %w", domain.ErrInvalidInput)
	}

	// WAL mode so an external reader can follow the harvest live.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UpsertRepository replaces the repository record wholesale. Delete and
// insert share one transaction, so the record is never half-written.
func (s *Store) UpsertRepository(ctx context.Context, repo domain.Repository) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert repository: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM Repositories WHERE url = ?", repo.URL); err != nil {
		return fmt.Errorf("deleting repository: %w", err)
	}

	fork := 0
	if repo.Fork {
		fork = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO Repositories (url, owner, name, fork, stars, contributors, forks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, repo.URL, repo.Owner, repo.Name, fork, repo.Stars, repo.Contributors, repo.Forks,
		repo.CreatedAt.UTC().Format(time.RFC3339), repo.FreshnessToken())
	if err != nil {
		return fmt.Errorf("inserting repository: %w", err)
	}

	return tx.Commit()
}

// RepositoryToken returns the stored last-modified token for a URL.
func (s *Store) RepositoryToken(ctx context.Context, url string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT updated_at FROM Repositories WHERE url = ?", url).Scan(&token)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up repository token: %w", err)
	}
	return token, nil
}

// UpsertFile replaces a file's metadata and content records wholesale.
// Both deletes and both inserts share one transaction.
func (s *Store) UpsertFile(ctx context.Context, meta domain.FileMeta, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert file: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM ContentFiles WHERE url = ?", meta.URL); err != nil {
		return fmt.Errorf("deleting file content: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM ContentMeta WHERE url = ?", meta.URL); err != nil {
		return fmt.Errorf("deleting file metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ContentFiles (url, content) VALUES (?, ?)",
		meta.URL, content); err != nil {
		return fmt.Errorf("inserting file content: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ContentMeta (url, path, repo_url, sha, size) VALUES (?, ?, ?, ?, ?)",
		meta.URL, meta.Path, meta.RepoURL, meta.SHA, meta.Size); err != nil {
		return fmt.Errorf("inserting file metadata: %w", err)
	}

	return tx.Commit()
}

// FileToken returns the stored content checksum for a blob URL.
func (s *Store) FileToken(ctx context.Context, url string) (string, error) {
	var sha string
	err := s.db.QueryRowContext(ctx,
		"SELECT sha FROM ContentMeta WHERE url = ?", url).Scan(&sha)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up file token: %w", err)
	}
	return sha, nil
}

// SaveRun records a completed harvest run.
func (s *Store) SaveRun(ctx context.Context, run domain.HarvestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO HarvestRuns (id, started_at, finished_at,
			repos_new, repos_modified, repos_unchanged,
			files_new, files_modified, files_unchanged, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Stats.ReposNew, run.Stats.ReposModified, run.Stats.ReposUnchanged,
		run.Stats.FilesNew, run.Stats.FilesModified, run.Stats.FilesUnchanged,
		run.Stats.Errors)
	if err != nil {
		return fmt.Errorf("saving harvest run: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
