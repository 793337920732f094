package repository

import (
	"context"

	"lead-service/internal/domain"
)

// LeadsRepository owns lead rows. The unique index on
// (requirement_id, seller_id) is the authoritative duplicate guard; the
// in-transaction existence check is only an optimization that may lose a
// race, in which case the index rejects the loser and CreateLead still
// reports the same conflict.
type LeadsRepository interface {
	// CreateLead re-checks the requirement status and the duplicate pair
	// inside one transaction, then inserts the lead with status Processing.
	CreateLead(ctx context.Context, lead *domain.Lead) error
	// CancelLead transitions the seller's Processing lead to Cancelled and
	// unconditionally reopens the parent requirement, in one transaction.
	CancelLead(ctx context.Context, leadID, sellerID string) (*domain.Lead, error)
	// SellerStats counts the seller's leads grouped by status.
	SellerStats(ctx context.Context, sellerID string) (*domain.LeadStats, error)
	// ListContactedBySeller joins leads with requirements and buyer shadow
	// records for the seller dashboard.
	ListContactedBySeller(ctx context.Context, sellerID string) ([]*domain.ContactedRequirement, error)
}
