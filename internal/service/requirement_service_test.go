package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lead-service/internal/domain"
)

type requirementServiceFixture struct {
	requirements *fakeRequirementsRepo
	users        *fakeUsersRepo
	identity     *fakeIdentityClient
	svc          RequirementService

	buyerID string
}

func newRequirementServiceFixture() *requirementServiceFixture {
	f := &requirementServiceFixture{
		requirements: newFakeRequirementsRepo(),
		users:        newFakeUsersRepo(),
		identity:     &fakeIdentityClient{users: make(map[string]*RemoteUser)},
		buyerID:      uuid.New().String(),
	}

	f.identity.users[f.buyerID] = &RemoteUser{
		ID: f.buyerID, Name: "Asha", Email: "asha@example.com", Role: domain.RoleBuyer,
	}

	sync := NewIdentitySync(f.users, f.identity, zap.NewNop())
	f.svc = NewRequirementService(f.requirements, sync, zap.NewNop())

	return f
}

func TestCreateRequirement_FoldsFormIntoDetails(t *testing.T) {
	f := newRequirementServiceFixture()

	req, err := f.svc.CreateRequirement(context.Background(), CreateRequirementRequest{
		BuyerID:            f.buyerID,
		ProductRequirement: "  Steel pipes  ",
		Category:           "metals",
		Quantity:           "100",
		BudgetMin:          1000,
		BudgetMax:          5000,
		DeliveryLocation:   "Pune",
		BuyerName:          "Asha",
		BuyerEmail:         "asha@example.com",
		AdditionalDetails:  "ISO certified only",
	})

	require.NoError(t, err)
	assert.Equal(t, "Steel pipes", req.ProductName)
	assert.Equal(t, domain.RequirementStatusOpen, req.Status)
	assert.Equal(t, "100", req.Quantity.String)
	assert.Equal(t, "Pune", req.LocationPreference.String)
	assert.Equal(t, "Pune", req.City.String)

	var details domain.RequirementDetails
	require.NoError(t, json.Unmarshal([]byte(req.Details.String), &details))
	assert.Equal(t, "ISO certified only", details.Description)
	assert.Equal(t, "metals", details.Meta.Category)
	assert.Equal(t, float64(5000), details.Meta.BudgetMax)

	// Buyer shadow row exists before the insert.
	buyer, err := f.users.GetShadowUser(context.Background(), f.buyerID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", buyer.Name)
}

func TestCreateRequirement_MissingProduct(t *testing.T) {
	f := newRequirementServiceFixture()

	_, err := f.svc.CreateRequirement(context.Background(), CreateRequirementRequest{
		BuyerID:            f.buyerID,
		ProductRequirement: "   ",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "product_requirement is required", err.Error())
	assert.Empty(t, f.requirements.requirements)
}

func TestCreateRequirement_IdentityDownStillCreates(t *testing.T) {
	f := newRequirementServiceFixture()
	f.identity.err = domain.NewError(domain.ErrDependency, "identity service unavailable")

	req, err := f.svc.CreateRequirement(context.Background(), CreateRequirementRequest{
		BuyerID:            f.buyerID,
		ProductRequirement: "Steel pipes",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)

	buyer, err := f.users.GetShadowUser(context.Background(), f.buyerID)
	require.NoError(t, err)
	assert.Equal(t, "Unknown User", buyer.Name)
	assert.Equal(t, domain.RoleBuyer, buyer.Role)
}

func TestGetRequirement_NotFound(t *testing.T) {
	f := newRequirementServiceFixture()

	_, err := f.svc.GetRequirement(context.Background(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Requirement not found", err.Error())
}

func TestListRequirements_PublicDefaultsToOpen(t *testing.T) {
	f := newRequirementServiceFixture()
	open := &domain.Requirement{ID: "r1", BuyerID: f.buyerID, Status: domain.RequirementStatusOpen}
	closed := &domain.Requirement{ID: "r2", BuyerID: f.buyerID, Status: domain.RequirementStatusClosed}
	f.requirements.requirements[open.ID] = open
	f.requirements.requirements[closed.ID] = closed

	items, err := f.svc.ListRequirements(context.Background(), ListRequirementsRequest{CallerID: uuid.New().String()})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].ID)
}

func TestListRequirements_MineIgnoresStatus(t *testing.T) {
	f := newRequirementServiceFixture()
	open := &domain.Requirement{ID: "r1", BuyerID: f.buyerID, Status: domain.RequirementStatusOpen}
	closed := &domain.Requirement{ID: "r2", BuyerID: f.buyerID, Status: domain.RequirementStatusClosed}
	other := &domain.Requirement{ID: "r3", BuyerID: uuid.New().String(), Status: domain.RequirementStatusOpen}
	f.requirements.requirements[open.ID] = open
	f.requirements.requirements[closed.ID] = closed
	f.requirements.requirements[other.ID] = other

	items, err := f.svc.ListRequirements(context.Background(), ListRequirementsRequest{
		CallerID: f.buyerID,
		Mine:     true,
		Status:   domain.RequirementStatusOpen,
	})

	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestUpdateRequirement_NoFields(t *testing.T) {
	f := newRequirementServiceFixture()

	_, err := f.svc.UpdateRequirement(context.Background(), UpdateRequirementRequest{
		ID:      uuid.New().String(),
		BuyerID: f.buyerID,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "No valid fields provided", err.Error())
}

func TestUpdateRequirement_NotOwnedMapsToNotFound(t *testing.T) {
	f := newRequirementServiceFixture()
	f.requirements.updateErr = sql.ErrNoRows
	name := "Copper wire"

	_, err := f.svc.UpdateRequirement(context.Background(), UpdateRequirementRequest{
		ID:          uuid.New().String(),
		BuyerID:     f.buyerID,
		ProductName: &name,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Requirement not found or forbidden", err.Error())
}

func TestCloseRequirement_AlreadyClosedMapsToNotFound(t *testing.T) {
	f := newRequirementServiceFixture()
	f.requirements.closeErr = sql.ErrNoRows

	err := f.svc.CloseRequirement(context.Background(), uuid.New().String(), f.buyerID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Requirement not found or already closed", err.Error())
}

func TestDeleteRequirement_RemovesOwnedRow(t *testing.T) {
	f := newRequirementServiceFixture()
	req := &domain.Requirement{ID: "r1", BuyerID: f.buyerID, Status: domain.RequirementStatusOpen}
	f.requirements.requirements[req.ID] = req

	err := f.svc.DeleteRequirement(context.Background(), req.ID, f.buyerID)

	require.NoError(t, err)
	assert.Empty(t, f.requirements.requirements)
}

func TestDeleteRequirement_NotOwnedMapsToNotFound(t *testing.T) {
	f := newRequirementServiceFixture()
	req := &domain.Requirement{ID: "r1", BuyerID: f.buyerID, Status: domain.RequirementStatusOpen}
	f.requirements.requirements[req.ID] = req

	err := f.svc.DeleteRequirement(context.Background(), req.ID, uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Requirement not found or forbidden", err.Error())
	assert.Len(t, f.requirements.requirements, 1)
}

func TestDeleteAllRequirements_NoneFound(t *testing.T) {
	f := newRequirementServiceFixture()
	f.requirements.deleteCount = 0

	_, err := f.svc.DeleteAllRequirements(context.Background(), f.buyerID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "No requirements found", err.Error())
}

func TestDeleteAllRequirements_ReturnsCount(t *testing.T) {
	f := newRequirementServiceFixture()
	f.requirements.deleteCount = 3

	count, err := f.svc.DeleteAllRequirements(context.Background(), f.buyerID)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSelectSeller_Validation(t *testing.T) {
	f := newRequirementServiceFixture()

	err := f.svc.SelectSeller(context.Background(), "", f.buyerID, "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSelectSeller_DelegatesAndPropagates(t *testing.T) {
	f := newRequirementServiceFixture()
	sellerID := uuid.New().String()

	err := f.svc.SelectSeller(context.Background(), uuid.New().String(), f.buyerID, sellerID)

	require.NoError(t, err)
	assert.Equal(t, sellerID, f.requirements.selectedSeller)

	f.requirements.selectErr = domain.NewError(domain.ErrForbidden, "Not authorized")
	err = f.svc.SelectSeller(context.Background(), uuid.New().String(), f.buyerID, sellerID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
