package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lead-service/internal/domain"

	"github.com/lib/pq"
)

// pq error code for unique_violation.
const uniqueViolation = "23505"

// PostgresLeadsRepository lead repository implementation.
type PostgresLeadsRepository struct {
	db *sql.DB
}

func NewPostgresLeadsRepository(db *sql.DB) *PostgresLeadsRepository {
	return &PostgresLeadsRepository{db: db}
}

var _ LeadsRepository = (*PostgresLeadsRepository)(nil)

func (r *PostgresLeadsRepository) CreateLead(ctx context.Context, lead *domain.Lead) error {
	if lead == nil || lead.ID == "" || lead.RequirementID == "" || lead.SellerID == "" || lead.BuyerID == "" {
		return domain.NewError(domain.ErrValidation, "lead id, requirement, seller and buyer are required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-check the requirement inside the transaction. Best-effort under
	// read-committed; the unique index below is the real race guard.
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM requirements WHERE id = $1`,
		lead.RequirementID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.NewError(domain.ErrNotFound, "Requirement not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load requirement: %w", err)
	}
	if status == domain.RequirementStatusClosed {
		return domain.NewError(domain.ErrConflict, "Requirement already closed")
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE requirement_id = $1 AND seller_id = $2)`,
		lead.RequirementID, lead.SellerID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check duplicate lead: %w", err)
	}
	if exists {
		return domain.NewError(domain.ErrConflict, "Already contacted")
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO leads (id, requirement_id, seller_id, buyer_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		lead.ID, lead.RequirementID, lead.SellerID, lead.BuyerID, lead.Status,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// Lost a race with a concurrent buy-lead for the same pair.
			return domain.NewError(domain.ErrConflict, "Already contacted")
		}
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *PostgresLeadsRepository) CancelLead(ctx context.Context, leadID, sellerID string) (*domain.Lead, error) {
	if leadID == "" || sellerID == "" {
		return nil, domain.NewError(domain.ErrNotFound, "Lead not found or cannot be cancelled")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lead domain.Lead
	err = tx.QueryRowContext(ctx,
		`SELECT id::text, requirement_id::text, seller_id::text, buyer_id::text,
		        status, created_at, updated_at
		 FROM leads
		 WHERE id = $1 AND seller_id = $2 AND status = $3`,
		leadID, sellerID, domain.LeadStatusProcessing,
	).Scan(
		&lead.ID,
		&lead.RequirementID,
		&lead.SellerID,
		&lead.BuyerID,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.ErrNotFound, "Lead not found or cannot be cancelled")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1`,
		leadID, domain.LeadStatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel lead: %w", err)
	}

	// Reopen the requirement for every seller, even if sibling leads are
	// still Processing. Simplifying policy carried over as-is.
	_, err = tx.ExecContext(ctx,
		`UPDATE requirements SET status = $2, updated_at = NOW() WHERE id = $1`,
		lead.RequirementID, domain.RequirementStatusOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen requirement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	lead.Status = domain.LeadStatusCancelled
	return &lead, nil
}

func (r *PostgresLeadsRepository) SellerStats(ctx context.Context, sellerID string) (*domain.LeadStats, error) {
	if sellerID == "" {
		return &domain.LeadStats{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM leads WHERE seller_id = $1 GROUP BY status`,
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	stats := &domain.LeadStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case domain.LeadStatusProcessing:
			// Dashboard has always labelled Processing as "accepted".
			stats.Accepted += count
		case domain.LeadStatusClosed:
			stats.Closed += count
		case domain.LeadStatusCancelled:
			stats.Cancelled += count
		}
	}

	return stats, rows.Err()
}

func (r *PostgresLeadsRepository) ListContactedBySeller(ctx context.Context, sellerID string) ([]*domain.ContactedRequirement, error) {
	if sellerID == "" {
		return []*domain.ContactedRequirement{}, nil
	}

	query := `
		SELECT
			l.id::text,
			l.status,
			l.created_at,
			r.id::text,
			COALESCE(r.product_name, ''),
			COALESCE(r.details, ''),
			COALESCE(r.quantity, ''),
			COALESCE(r.location_preference, ''),
			COALESCE(r.city, ''),
			r.status,
			r.buyer_id::text,
			COALESCE(u.name, ''),
			COALESCE(u.email, '')
		FROM leads l
		JOIN requirements r ON r.id = l.requirement_id
		LEFT JOIN users u ON u.id = r.buyer_id
		WHERE l.seller_id = $1
		ORDER BY l.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacted requirements: %w", err)
	}
	defer rows.Close()

	items := []*domain.ContactedRequirement{}
	for rows.Next() {
		var c domain.ContactedRequirement
		err := rows.Scan(
			&c.LeadID,
			&c.LeadStatus,
			&c.LeadCreatedAt,
			&c.RequirementID,
			&c.ProductName,
			&c.Details,
			&c.Quantity,
			&c.LocationPreference,
			&c.City,
			&c.RequirementStatus,
			&c.BuyerID,
			&c.BuyerName,
			&c.BuyerEmail,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &c)
	}

	return items, rows.Err()
}
