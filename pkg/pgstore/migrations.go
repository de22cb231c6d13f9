package pgstore

import "embed"

// Migrations holds the goose SQL migrations, applied with pg.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS
