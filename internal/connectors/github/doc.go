// Package github adapts the GitHub API to the harvest's RepositorySource
// and Gate ports.
//
// The Client wraps google/go-github for repository search, recursive git
// tree listing, blob retrieval, contributor counting, and rate limit
// queries. The QuotaGate sits in front of every burst of remote calls
// and blocks, indefinitely if need be, while the remaining quota is
// below its low-water mark. The harvester is assumed to run unattended
// for long periods, so the wait is deliberately unbounded.
package github
