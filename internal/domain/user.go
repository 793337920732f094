package domain

import "time"

// User roles as reported by the identity service.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// ShadowUser is a locally-owned mirror of a user owned by the identity
// service, kept only so buyer_id/seller_id foreign keys can be satisfied
// without a cross-service lookup. Rows are inserted lazily and never
// refreshed; a stub row (name "Unknown User", synthetic email) is written
// when the identity service is unreachable.
type ShadowUser struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StubUser builds the placeholder shadow record used when the identity
// service cannot be reached.
func StubUser(id, role string) *ShadowUser {
	return &ShadowUser{
		ID:    id,
		Name:  "Unknown User",
		Email: id + "@stub.local",
		Role:  role,
	}
}
