// Package migrations holds the numbered schema files for the SQLite store.
// Files are named NNN_name.up.sql and applied in version order; the
// matching .down.sql files are kept for manual rollback only.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
