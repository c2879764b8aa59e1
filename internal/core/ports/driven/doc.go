// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RepositorySource: the remote hosting platform (search, trees, blobs, quota)
//   - HarvestStore: keyed persistence for repository, file, and run records
//   - Gate: blocks the caller while remote quota is nearly exhausted
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
