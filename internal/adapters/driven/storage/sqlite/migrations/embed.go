// Package migrations embeds the schema migrations for the daemon's
// SQLite store. Migrations run in filename order on startup; the store
// records the applied version in schema_migrations.
package migrations

import "embed"

// FS holds the numbered .up.sql and .down.sql files.
//
//go:embed *.sql
var FS embed.FS
