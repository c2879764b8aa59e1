// Package sqlite provides the SQLite-backed implementation of the
// harvest's store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. One database
// connection serves all three record families (repositories, file
// metadata/content pairs, harvest runs).
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory and embedded at compile time.
//
// # Write Discipline
//
// Every upsert is a delete-by-identity followed by an insert, committed
// as one transaction per call. The file metadata and content records
// share that transaction, so the read view never observes a mismatched
// (old content, new metadata) pair.
package sqlite
