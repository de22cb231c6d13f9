// Package pg wires PostgreSQL connectivity for the service: pooled
// connections through github.com/jackc/pgx/v5/pgxpool with startup retry,
// schema migrations through github.com/pressly/goose/v3 from an embedded
// filesystem, and error predicates that map driver errors to the conditions
// storage code cares about (no rows, duplicate key, foreign key violation).
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, cfg, log); err != nil { ... }
package pg
