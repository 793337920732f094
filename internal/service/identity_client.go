package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lead-service/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteUser is the identity service's view of a user.
type RemoteUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IdentityClient reads users from the identity service. Reads sit on the
// buy-lead critical path, so the timeout is short and a timeout is reported
// as a dependency failure, distinct from a definitive not-found.
type IdentityClient interface {
	FetchUser(ctx context.Context, userID string) (*RemoteUser, error)
}

type identityClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewIdentityClient(baseURL string, timeout time.Duration, logger *zap.Logger) IdentityClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &identityClient{
		httpClient: client,
		logger:     logger,
	}
}

func (c *identityClient) FetchUser(ctx context.Context, userID string) (*RemoteUser, error) {
	var user RemoteUser
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/users/" + userID)

	if err != nil {
		c.logger.Warn("identity service unreachable",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("identity fetch failed: %w", domain.ErrDependency)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, domain.NewError(domain.ErrNotFound, "User not found")
	case resp.IsError():
		c.logger.Warn("identity service returned error",
			zap.String("user_id", userID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("identity fetch failed with status %d: %w", resp.StatusCode(), domain.ErrDependency)
	}

	return &user, nil
}
