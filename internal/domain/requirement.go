package domain

import (
	"database/sql"
	"time"
)

// Requirement statuses. Linear lifecycle: Open -> Processing -> Closed.
// Processing is only reached through buyer finalization; a seller's first
// lead does NOT move the requirement off Open, so multiple sellers can
// compete until the buyer closes the deal.
const (
	RequirementStatusOpen       = "Open"
	RequirementStatusProcessing = "Processing"
	RequirementStatusClosed     = "Closed"
)

// Requirement is a buyer's posted sourcing need.
type Requirement struct {
	ID                 string
	BuyerID            string
	ProductName        string
	Details            sql.NullString // serialized RequirementDetails
	Quantity           sql.NullString
	LocationPreference sql.NullString
	City               sql.NullString
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RequirementDetails is the structured payload stored in the details column.
type RequirementDetails struct {
	Description string                 `json:"description,omitempty"`
	Meta        RequirementDetailsMeta `json:"meta"`
}

// RequirementDetailsMeta carries the metadata echoed back to sellers.
type RequirementDetailsMeta struct {
	Category   string  `json:"category,omitempty"`
	BudgetMin  float64 `json:"budget_min,omitempty"`
	BudgetMax  float64 `json:"budget_max,omitempty"`
	BuyerName  string  `json:"buyer_name,omitempty"`
	BuyerPhone string  `json:"buyer_phone,omitempty"`
	BuyerEmail string  `json:"buyer_email,omitempty"`
}
