// Package services implements the harvest engine: freshness
// classification, recursive include resolution, and the orchestrator
// that walks query terms, repositories, and file trees.
//
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
package services
