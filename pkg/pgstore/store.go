package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/pg"
)

// Store implements the account storage contracts on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ account.Storage         = (*Store)(nil)
	_ account.LinkingStorage  = (*Store)(nil)
	_ account.InviteValidator = (*Store)(nil)
)

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, email, username, display_name, avatar_url,
	password_hash IS NOT NULL, invite_verified, invited_by, invite_code_used,
	last_login_at, created_at`

const socialAccountColumns = `id, user_id, provider, provider_user_id,
	provider_username, provider_email, display_name, avatar_url, profile_url,
	last_used_at, created_at`

func scanUser(row pgx.Row) (*account.User, error) {
	var u account.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.AvatarURL,
		&u.HasPassword, &u.InviteVerified, &u.InvitedBy, &u.InviteCodeUsed,
		&u.LastLoginAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanSocialAccount(row pgx.Row) (*account.SocialAccount, error) {
	var a account.SocialAccount
	err := row.Scan(
		&a.ID, &a.UserID, &a.Provider, &a.ProviderUserID,
		&a.ProviderUsername, &a.ProviderEmail, &a.DisplayName, &a.AvatarURL,
		&a.ProfileURL, &a.LastUsedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetSocialAccount looks up a social account by its provider identity pair.
func (s *Store) GetSocialAccount(ctx context.Context, providerName, providerUserID string) (*account.SocialAccount, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+socialAccountColumns+` FROM social_accounts WHERE provider = $1 AND provider_user_id = $2`,
		providerName, providerUserID,
	)
	socialAccount, err := scanSocialAccount(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, account.ErrSocialAccountNotFound
		}
		return nil, fmt.Errorf("query social account: %w", err)
	}
	return socialAccount, nil
}

// TouchSocialAccount updates the last-used marker.
func (s *Store) TouchSocialAccount(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE social_accounts SET last_used_at = $2 WHERE id = $1`,
		id, usedAt,
	); err != nil {
		return fmt.Errorf("touch social account: %w", err)
	}
	return nil
}

// GetUserByID loads a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, account.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// GetUserByEmail loads a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, account.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// UpdateLastLogin records a successful login instant.
func (s *Store) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`,
		userID, at,
	); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UsernameExists reports whether a username is taken.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// CreateUserWithSocialAccount provisions a new user, its first social
// account and the optional invite usage in one transaction.
func (s *Store) CreateUserWithSocialAccount(ctx context.Context, user *account.User, socialAccount *account.SocialAccount, invite *account.InviteUsage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin provisioning tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, email, username, display_name, avatar_url,
			invite_verified, invited_by, invite_code_used, last_login_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Email, user.Username, user.DisplayName, user.AvatarURL,
		user.InviteVerified, user.InvitedBy, user.InviteCodeUsed,
		user.LastLoginAt, user.CreatedAt,
	); err != nil {
		// A concurrent signup can win the email between the resolver's
		// collision check and this insert.
		if pg.IsDuplicateKeyError(err) {
			return account.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err := insertSocialAccount(ctx, tx, socialAccount); err != nil {
		return err
	}

	if invite != nil {
		if _, err := tx.Exec(ctx,
			`INSERT INTO invite_usages (code, user_id, issued_by, used_at) VALUES ($1, $2, $3, $4)`,
			invite.Code, invite.UserID, invite.IssuedBy, invite.UsedAt,
		); err != nil {
			return fmt.Errorf("insert invite usage: %w", err)
		}
		// The guarded increment closes the race between Validate and this
		// transaction: two concurrent signups with the last use of a code
		// cannot both push use_count past max_uses.
		tag, err := tx.Exec(ctx,
			`UPDATE invite_codes SET use_count = use_count + 1 WHERE code = $1 AND (max_uses = 0 OR use_count < max_uses)`,
			invite.Code,
		)
		if err != nil {
			return fmt.Errorf("increment invite use count: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return account.ErrInviteInvalid
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit provisioning tx: %w", err)
	}
	return nil
}

// MarkInviteVerified flips invite verification and clears provenance.
func (s *Store) MarkInviteVerified(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE users SET invite_verified = TRUE, invited_by = NULL, invite_code_used = NULL WHERE id = $1`,
		userID,
	); err != nil {
		return fmt.Errorf("mark invite verified: %w", err)
	}
	return nil
}

// CreateSocialAccount links an additional provider identity to a user.
func (s *Store) CreateSocialAccount(ctx context.Context, socialAccount *account.SocialAccount) error {
	return insertSocialAccount(ctx, s.pool, socialAccount)
}

// DeleteSocialAccount removes the user's social account for a provider.
func (s *Store) DeleteSocialAccount(ctx context.Context, userID uuid.UUID, providerName string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM social_accounts WHERE user_id = $1 AND provider = $2`,
		userID, providerName,
	)
	if err != nil {
		return fmt.Errorf("delete social account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrSocialAccountNotFound
	}
	return nil
}

// ListSocialAccounts returns the user's social accounts, oldest first.
func (s *Store) ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]account.SocialAccount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+socialAccountColumns+` FROM social_accounts WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query social accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.SocialAccount
	for rows.Next() {
		socialAccount, err := scanSocialAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan social account: %w", err)
		}
		accounts = append(accounts, *socialAccount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social accounts: %w", err)
	}
	return accounts, nil
}

// execer covers both *pgxpool.Pool and pgx.Tx so the social-account insert
// serves the linking path and the provisioning transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertSocialAccount(ctx context.Context, db execer, socialAccount *account.SocialAccount) error {
	if _, err := db.Exec(ctx,
		`INSERT INTO social_accounts (id, user_id, provider, provider_user_id,
			provider_username, provider_email, display_name, avatar_url,
			profile_url, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		socialAccount.ID, socialAccount.UserID, socialAccount.Provider,
		socialAccount.ProviderUserID, socialAccount.ProviderUsername,
		socialAccount.ProviderEmail, socialAccount.DisplayName,
		socialAccount.AvatarURL, socialAccount.ProfileURL,
		socialAccount.LastUsedAt, socialAccount.CreatedAt,
	); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return account.ErrLinkConflict
		}
		return fmt.Errorf("insert social account: %w", err)
	}
	return nil
}
