// Package sqlite stores documents and the run audit log in one database
// file, data/metadata.db under the config directory, through the pure Go
// modernc.org/sqlite driver.
//
// Only document text and metadata are stored. Chunks are rebuilt by the
// chunker when the collection loads, so changing the chunk size never
// leaves stale rows behind.
//
// Schema changes ship as numbered files in migrations/ and are applied
// on Open. The connection runs in WAL mode with a busy timeout, which
// lets the HTTP server read while an upload writes.
package sqlite
