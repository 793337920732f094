package repository

import (
	"context"

	"lead-service/internal/domain"
)

// UsersRepository stores shadow copies of identity-service users. Rows exist
// only to satisfy buyer_id/seller_id foreign keys; they are written lazily
// and never refreshed.
type UsersRepository interface {
	// GetShadowUser returns sql.ErrNoRows when no shadow record exists.
	GetShadowUser(ctx context.Context, userID string) (*domain.ShadowUser, error)
	// InsertShadowUser is idempotent: a concurrent insert of the same id wins
	// silently (ON CONFLICT DO NOTHING).
	InsertShadowUser(ctx context.Context, user *domain.ShadowUser) error
}
