package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/pg"
)

// Validate checks an invite code against the invite_codes table. A code is
// valid when it is active, not expired and under its use limit (max_uses 0
// means unlimited). Every failure mode reports account.ErrInviteInvalid;
// callers get no hint why a code was rejected.
func (s *Store) Validate(ctx context.Context, code string) (*account.Invite, error) {
	var (
		issuedBy  *uuid.UUID
		maxUses   int
		useCount  int
		expiresAt *time.Time
		isActive  bool
	)
	err := s.pool.QueryRow(ctx,
		`SELECT issued_by, max_uses, use_count, expires_at, is_active FROM invite_codes WHERE code = $1`,
		code,
	).Scan(&issuedBy, &maxUses, &useCount, &expiresAt, &isActive)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, account.ErrInviteInvalid
		}
		return nil, fmt.Errorf("query invite code: %w", err)
	}

	if !isActive {
		return nil, account.ErrInviteInvalid
	}
	if expiresAt != nil && time.Now().After(*expiresAt) {
		return nil, account.ErrInviteInvalid
	}
	if maxUses > 0 && useCount >= maxUses {
		return nil, account.ErrInviteInvalid
	}

	return &account.Invite{Code: code, IssuedBy: issuedBy}, nil
}
