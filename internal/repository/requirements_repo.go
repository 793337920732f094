package repository

import (
	"context"

	"lead-service/internal/domain"
)

// RequirementFilters narrows ListRequirements. An empty Status means no
// status filter (the handler decides the public Open-only default).
type RequirementFilters struct {
	Status  string
	BuyerID string
}

// RequirementUpdate is the whitelisted partial-update set. nil means "leave
// unchanged". Status is deliberately part of the whitelist: the generic
// update can set it directly, bypassing the dedicated transitions.
type RequirementUpdate struct {
	ProductName        *string
	Details            *string
	Quantity           *string
	LocationPreference *string
	City               *string
	Status             *string
}

// IsEmpty reports whether no field was supplied.
func (u RequirementUpdate) IsEmpty() bool {
	return u.ProductName == nil && u.Details == nil && u.Quantity == nil &&
		u.LocationPreference == nil && u.City == nil && u.Status == nil
}

// RequirementsRepository owns requirement rows and the bulk status fan-outs
// that close or finalize them.
type RequirementsRepository interface {
	CreateRequirement(ctx context.Context, req *domain.Requirement) error
	GetRequirement(ctx context.Context, id string) (*domain.Requirement, error)
	ListRequirements(ctx context.Context, filters RequirementFilters) ([]*domain.Requirement, error)
	// UpdateRequirement returns sql.ErrNoRows when the row is missing or not
	// owned by buyerID.
	UpdateRequirement(ctx context.Context, id, buyerID string, upd RequirementUpdate) (*domain.Requirement, error)
	// DeleteRequirement removes one requirement owned by buyerID; leads go
	// with it via ON DELETE CASCADE. Returns sql.ErrNoRows when the row is
	// missing or not owned.
	DeleteRequirement(ctx context.Context, id, buyerID string) error
	// DeleteAllByBuyer removes every requirement the buyer owns; leads go
	// with them via ON DELETE CASCADE.
	DeleteAllByBuyer(ctx context.Context, buyerID string) (int64, error)
	// CloseRequirement transitions Open/Processing -> Closed and force-closes
	// every attached lead in the same transaction.
	CloseRequirement(ctx context.Context, id, buyerID string) error
	// SelectSeller rejects every lead on the requirement, accepts the chosen
	// seller's lead, and closes the requirement, all in one transaction. A
	// chosen seller without a lead row fails the whole operation.
	SelectSeller(ctx context.Context, requirementID, buyerID, sellerID string) error
}
