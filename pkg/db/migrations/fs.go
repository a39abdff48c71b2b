// Package migrations registers the schema migrations applied by db.Migrate.
package migrations

import "embed"

// FS exposes the migration sources so goose can resolve versions at runtime.
//
//go:embed *.go
var FS embed.FS
