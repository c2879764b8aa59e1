package domain

import "time"

// HarvestRun is the provenance record of one harvest invocation. It is
// written once, when the run completes, carrying the final counters.
type HarvestRun struct {
	// ID is the unique run identifier.
	ID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run completed.
	FinishedAt time.Time

	// Stats holds the final counter values.
	Stats StatsSnapshot
}
