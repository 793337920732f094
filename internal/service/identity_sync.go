package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lead-service/internal/domain"
	"lead-service/internal/repository"

	"go.uber.org/zap"
)

// IdentitySync keeps the local shadow of identity-service users complete
// enough to satisfy foreign keys on requirements and leads.
//
// The tradeoff is availability over freshness: when the identity service is
// unreachable a stub row is written so that dependent inserts never fail
// purely because a remote collaborator is down. Shadow rows are never
// refreshed once written.
type IdentitySync struct {
	users    repository.UsersRepository
	identity IdentityClient
	logger   *zap.Logger
}

func NewIdentitySync(users repository.UsersRepository, identity IdentityClient, logger *zap.Logger) *IdentitySync {
	return &IdentitySync{
		users:    users,
		identity: identity,
		logger:   logger,
	}
}

// Ensure guarantees a shadow record exists for userID and returns it. If the
// record is missing it is fetched from the identity service; on remote
// failure of any kind a stub with the assumed role is written instead.
// At most one outbound read and one row insert.
func (s *IdentitySync) Ensure(ctx context.Context, userID, assumedRole string) (*domain.ShadowUser, error) {
	existing, err := s.users.GetShadowUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read shadow user: %w", err)
	}

	remote, fetchErr := s.identity.FetchUser(ctx, userID)
	if fetchErr != nil {
		remote = nil
	}
	return s.EnsureKnown(ctx, userID, remote, assumedRole)
}

// EnsureKnown is Ensure for callers that already fetched the remote user (or
// failed to: remote may be nil). It avoids a second identity read on paths
// that fetch the user anyway for role verification.
func (s *IdentitySync) EnsureKnown(ctx context.Context, userID string, remote *RemoteUser, assumedRole string) (*domain.ShadowUser, error) {
	existing, err := s.users.GetShadowUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read shadow user: %w", err)
	}

	var user *domain.ShadowUser
	if remote != nil {
		user = &domain.ShadowUser{
			ID:    userID,
			Name:  remote.Name,
			Email: remote.Email,
			Role:  remote.Role,
		}
	} else {
		// Stub rows silently weaken data quality; make it visible.
		s.logger.Warn("identity unavailable, inserting stub shadow user",
			zap.String("user_id", userID),
			zap.String("assumed_role", assumedRole),
		)
		user = domain.StubUser(userID, assumedRole)
	}

	if err := s.users.InsertShadowUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to insert shadow user: %w", err)
	}

	return user, nil
}
