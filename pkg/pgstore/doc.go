// Package pgstore is the PostgreSQL persistence layer for account
// resolution and linking, implemented on github.com/jackc/pgx/v5.
//
// Store satisfies account.Storage, account.LinkingStorage and
// account.InviteValidator against four tables: users, social_accounts,
// invite_codes and invite_usages. New-user provisioning runs in a single
// transaction so a failed insert leaves no partial rows. Schema migrations
// are embedded and applied with pg.Migrate at startup.
package pgstore
