package domain

import "time"

// Lead statuses. A lead starts in Processing and ends in exactly one of
// Closed (requirement force-closed), Cancelled (seller withdrew),
// Rejected/Accepted (buyer final selection).
const (
	LeadStatusProcessing = "Processing"
	LeadStatusClosed     = "Closed"
	LeadStatusCancelled  = "Cancelled"
	LeadStatusAccepted   = "Accepted"
	LeadStatusRejected   = "Rejected"
)

// Lead is a seller's claim against a requirement. buyer_id is denormalized
// from the requirement at creation time and frozen thereafter.
// (requirement_id, seller_id) is unique: one active lead per seller per
// requirement.
type Lead struct {
	ID            string
	RequirementID string
	SellerID      string
	BuyerID       string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LeadStats is the seller dashboard breakdown. Accepted mirrors the count of
// Processing leads, matching what the dashboard has always displayed.
type LeadStats struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Accepted  int `json:"accepted"`
	Closed    int `json:"closed"`
	Cancelled int `json:"cancelled"`
}

// ContactedRequirement is one row of the seller's contacted-leads view:
// the lead joined with its requirement and the buyer's shadow record.
type ContactedRequirement struct {
	LeadID             string    `json:"lead_id"`
	LeadStatus         string    `json:"lead_status"`
	LeadCreatedAt      time.Time `json:"lead_created_at"`
	RequirementID      string    `json:"requirement_id"`
	ProductName        string    `json:"product_name"`
	Details            string    `json:"details,omitempty"`
	Quantity           string    `json:"quantity,omitempty"`
	LocationPreference string    `json:"location_preference,omitempty"`
	City               string    `json:"city,omitempty"`
	RequirementStatus  string    `json:"requirement_status"`
	BuyerID            string    `json:"buyer_id"`
	BuyerName          string    `json:"buyer_name,omitempty"`
	BuyerEmail         string    `json:"buyer_email,omitempty"`
}
