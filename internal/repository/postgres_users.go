package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lead-service/internal/domain"
)

// PostgresUsersRepository shadow-user repository over the service's own store.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetShadowUser(ctx context.Context, userID string) (*domain.ShadowUser, error) {
	if userID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT id::text, name, email, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.ShadowUser
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUsersRepository) InsertShadowUser(ctx context.Context, user *domain.ShadowUser) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("shadow user id is required")
	}

	query := `
		INSERT INTO users (id, name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return fmt.Errorf("failed to insert shadow user: %w", err)
	}

	return nil
}
