// Package domain defines the core business entities for clharvest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Repository: a remote repository discovered via search
//   - TreeEntry: one entry of a repository's recursive file listing
//   - FileMeta: metadata for a harvested, flattened source file
//   - HarvestStats: counters and status line of a running harvest
//   - HarvestRun: the persisted record of one completed harvest
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
