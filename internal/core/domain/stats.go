package domain

import "sync"

// HarvestStats accumulates the counters and status line of a running
// harvest. It is passed by reference into the orchestrator and read by the
// console renderer through Snapshot, so no package carries global counters.
type HarvestStats struct {
	mu sync.Mutex

	reposNew       int
	reposModified  int
	reposUnchanged int
	filesNew       int
	filesModified  int
	filesUnchanged int
	errors         int
	current        string
}

// StatsSnapshot is a point-in-time copy of HarvestStats, safe to read
// while the harvest keeps mutating the live aggregate.
type StatsSnapshot struct {
	ReposNew       int
	ReposModified  int
	ReposUnchanged int
	FilesNew       int
	FilesModified  int
	FilesUnchanged int
	Errors         int
	Current        string
}

// NewHarvestStats creates an empty stats aggregate.
func NewHarvestStats() *HarvestStats {
	return &HarvestStats{}
}

// RepoNew records a first-time repository insert.
func (s *HarvestStats) RepoNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reposNew++
}

// RepoModified records a wholesale repository replacement.
func (s *HarvestStats) RepoModified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reposModified++
}

// RepoUnchanged records a repository skipped by freshness classification.
func (s *HarvestStats) RepoUnchanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reposUnchanged++
}

// FileNew records a first-time file insert.
func (s *HarvestStats) FileNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesNew++
}

// FileModified records a wholesale file replacement.
func (s *HarvestStats) FileModified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesModified++
}

// FileUnchanged records a file skipped by checksum classification.
func (s *HarvestStats) FileUnchanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesUnchanged++
}

// Error records a recoverable per-file failure.
func (s *HarvestStats) Error() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

// SetCurrent updates the human-readable status line item.
func (s *HarvestStats) SetCurrent(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = item
}

// Snapshot returns a copy of the current counters and status item.
func (s *HarvestStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		ReposNew:       s.reposNew,
		ReposModified:  s.reposModified,
		ReposUnchanged: s.reposUnchanged,
		FilesNew:       s.filesNew,
		FilesModified:  s.filesModified,
		FilesUnchanged: s.filesUnchanged,
		Errors:         s.errors,
		Current:        s.current,
	}
}
