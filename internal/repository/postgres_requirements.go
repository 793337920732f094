package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lead-service/internal/domain"
)

// PostgresRequirementsRepository requirement repository implementation.
type PostgresRequirementsRepository struct {
	db *sql.DB
}

func NewPostgresRequirementsRepository(db *sql.DB) *PostgresRequirementsRepository {
	return &PostgresRequirementsRepository{db: db}
}

var _ RequirementsRepository = (*PostgresRequirementsRepository)(nil)

const requirementColumns = `
	id::text,
	buyer_id::text,
	product_name,
	details,
	quantity,
	location_preference,
	city,
	status,
	created_at,
	updated_at
`

func scanRequirement(row interface{ Scan(...any) error }) (*domain.Requirement, error) {
	var req domain.Requirement
	err := row.Scan(
		&req.ID,
		&req.BuyerID,
		&req.ProductName,
		&req.Details,
		&req.Quantity,
		&req.LocationPreference,
		&req.City,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresRequirementsRepository) CreateRequirement(ctx context.Context, req *domain.Requirement) error {
	if req == nil {
		return fmt.Errorf("requirement is required")
	}
	if req.BuyerID == "" {
		return fmt.Errorf("buyer_id is required")
	}

	query := `
		INSERT INTO requirements (
			id, buyer_id, product_name, details, quantity,
			location_preference, city, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		req.ID,
		req.BuyerID,
		req.ProductName,
		req.Details,
		req.Quantity,
		req.LocationPreference,
		req.City,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert requirement: %w", err)
	}

	return nil
}

func (r *PostgresRequirementsRepository) GetRequirement(ctx context.Context, id string) (*domain.Requirement, error) {
	if id == "" {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + requirementColumns + ` FROM requirements WHERE id = $1`
	return scanRequirement(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRequirementsRepository) ListRequirements(ctx context.Context, filters RequirementFilters) ([]*domain.Requirement, error) {
	where := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("LOWER(status) = LOWER($%d)", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.BuyerID != "" {
		where = append(where, fmt.Sprintf("buyer_id = $%d", argIdx))
		args = append(args, filters.BuyerID)
		argIdx++
	}

	query := `SELECT ` + requirementColumns + `
		FROM requirements
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requirements := []*domain.Requirement{}
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		requirements = append(requirements, req)
	}

	return requirements, rows.Err()
}

func (r *PostgresRequirementsRepository) UpdateRequirement(ctx context.Context, id, buyerID string, upd RequirementUpdate) (*domain.Requirement, error) {
	if id == "" || buyerID == "" {
		return nil, sql.ErrNoRows
	}

	updates := []string{"updated_at = NOW()"}
	args := []any{id, buyerID}
	argIdx := 3

	addField := func(column string, value *string) {
		if value != nil {
			updates = append(updates, fmt.Sprintf("%s = $%d", column, argIdx))
			args = append(args, *value)
			argIdx++
		}
	}
	addField("product_name", upd.ProductName)
	addField("details", upd.Details)
	addField("quantity", upd.Quantity)
	addField("location_preference", upd.LocationPreference)
	addField("city", upd.City)
	addField("status", upd.Status)

	query := fmt.Sprintf(
		`UPDATE requirements SET %s WHERE id = $1 AND buyer_id = $2 RETURNING %s`,
		strings.Join(updates, ", "), requirementColumns,
	)

	return scanRequirement(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRequirementsRepository) DeleteRequirement(ctx context.Context, id, buyerID string) error {
	if id == "" || buyerID == "" {
		return sql.ErrNoRows
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM requirements WHERE id = $1 AND buyer_id = $2`,
		id, buyerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete requirement: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PostgresRequirementsRepository) DeleteAllByBuyer(ctx context.Context, buyerID string) (int64, error) {
	if buyerID == "" {
		return 0, fmt.Errorf("buyer_id is required")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM requirements WHERE buyer_id = $1`, buyerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requirements: %w", err)
	}

	return res.RowsAffected()
}

func (r *PostgresRequirementsRepository) CloseRequirement(ctx context.Context, id, buyerID string) error {
	if id == "" || buyerID == "" {
		return sql.ErrNoRows
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE requirements
		 SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND buyer_id = $2 AND status IN ($4, $5)`,
		id, buyerID,
		domain.RequirementStatusClosed,
		domain.RequirementStatusOpen, domain.RequirementStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to close requirement: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	// Force-close every attached lead, whatever its current status.
	_, err = tx.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE requirement_id = $1`,
		id, domain.LeadStatusClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to close leads: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *PostgresRequirementsRepository) SelectSeller(ctx context.Context, requirementID, buyerID, sellerID string) error {
	if requirementID == "" || buyerID == "" || sellerID == "" {
		return domain.NewError(domain.ErrValidation, "requirementId and sellerId required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownedID string
	err = tx.QueryRowContext(ctx,
		`SELECT id::text FROM requirements WHERE id = $1 AND buyer_id = $2`,
		requirementID, buyerID,
	).Scan(&ownedID)
	if err == sql.ErrNoRows {
		return domain.NewError(domain.ErrForbidden, "Not authorized")
	}
	if err != nil {
		return fmt.Errorf("failed to load requirement: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE requirement_id = $1`,
		requirementID, domain.LeadStatusRejected,
	)
	if err != nil {
		return fmt.Errorf("failed to reject leads: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE leads SET status = $3, updated_at = NOW()
		 WHERE requirement_id = $1 AND seller_id = $2`,
		requirementID, sellerID, domain.LeadStatusAccepted,
	)
	if err != nil {
		return fmt.Errorf("failed to accept lead: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// No lead for the chosen seller: the rollback undoes the reject pass.
		return domain.NewError(domain.ErrNotFound, "Seller lead not found")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE requirements SET status = $2, updated_at = NOW() WHERE id = $1`,
		requirementID, domain.RequirementStatusClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to close requirement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
