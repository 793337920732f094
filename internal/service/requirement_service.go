package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"lead-service/internal/domain"
	"lead-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// RequirementService is the buyer side of the workflow engine.
type RequirementService interface {
	CreateRequirement(ctx context.Context, req CreateRequirementRequest) (*domain.Requirement, error)
	GetRequirement(ctx context.Context, id string) (*domain.Requirement, error)
	ListRequirements(ctx context.Context, req ListRequirementsRequest) ([]*domain.Requirement, error)
	UpdateRequirement(ctx context.Context, req UpdateRequirementRequest) (*domain.Requirement, error)
	CloseRequirement(ctx context.Context, id, buyerID string) error
	DeleteRequirement(ctx context.Context, id, buyerID string) error
	DeleteAllRequirements(ctx context.Context, buyerID string) (int64, error)
	SelectSeller(ctx context.Context, requirementID, buyerID, sellerID string) error
}

type requirementService struct {
	requirements repository.RequirementsRepository
	sync         *IdentitySync
	logger       *zap.Logger
}

func NewRequirementService(requirements repository.RequirementsRepository, sync *IdentitySync, logger *zap.Logger) RequirementService {
	return &requirementService{
		requirements: requirements,
		sync:         sync,
		logger:       logger,
	}
}

// CreateRequirementRequest mirrors the posting form: free text plus the
// metadata folded into the details payload.
type CreateRequirementRequest struct {
	BuyerID            string
	ProductRequirement string
	Category           string
	Quantity           string
	BudgetMin          float64
	BudgetMax          float64
	DeliveryLocation   string
	BuyerName          string
	BuyerPhone         string
	BuyerEmail         string
	AdditionalDetails  string
}

// ListRequirementsRequest selects between the public listing and the owner
// listing. Mine returns every status for the caller and ignores the Status
// filter even if supplied; the public listing defaults to Open.
type ListRequirementsRequest struct {
	CallerID string
	Mine     bool
	Status   string
}

// UpdateRequirementRequest carries the whitelisted mutable fields; nil
// leaves a field unchanged.
type UpdateRequirementRequest struct {
	ID                 string
	BuyerID            string
	ProductName        *string
	Details            *string
	Quantity           *string
	LocationPreference *string
	City               *string
	Status             *string
}

func (s *requirementService) CreateRequirement(ctx context.Context, req CreateRequirementRequest) (*domain.Requirement, error) {
	product := strings.TrimSpace(req.ProductRequirement)
	if product == "" {
		return nil, domain.NewError(domain.ErrValidation, "product_requirement is required")
	}

	if _, err := s.sync.Ensure(ctx, req.BuyerID, domain.RoleBuyer); err != nil {
		return nil, err
	}

	details, err := json.Marshal(domain.RequirementDetails{
		Description: req.AdditionalDetails,
		Meta: domain.RequirementDetailsMeta{
			Category:   req.Category,
			BudgetMin:  req.BudgetMin,
			BudgetMax:  req.BudgetMax,
			BuyerName:  req.BuyerName,
			BuyerPhone: req.BuyerPhone,
			BuyerEmail: req.BuyerEmail,
		},
	})
	if err != nil {
		return nil, err
	}

	requirement := &domain.Requirement{
		ID:          uuid.NewString(),
		BuyerID:     req.BuyerID,
		ProductName: product,
		Details:     sql.NullString{String: string(details), Valid: true},
		Status:      domain.RequirementStatusOpen,
	}
	if req.Quantity != "" {
		requirement.Quantity = sql.NullString{String: req.Quantity, Valid: true}
	}
	if req.DeliveryLocation != "" {
		requirement.LocationPreference = sql.NullString{String: req.DeliveryLocation, Valid: true}
		requirement.City = sql.NullString{String: req.DeliveryLocation, Valid: true}
	}

	if err := s.requirements.CreateRequirement(ctx, requirement); err != nil {
		return nil, err
	}

	s.logger.Info("requirement created",
		zap.String("requirement_id", requirement.ID),
		zap.String("buyer_id", req.BuyerID),
	)

	return requirement, nil
}

func (s *requirementService) GetRequirement(ctx context.Context, id string) (*domain.Requirement, error) {
	requirement, err := s.requirements.GetRequirement(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewError(domain.ErrNotFound, "Requirement not found")
		}
		return nil, err
	}
	return requirement, nil
}

func (s *requirementService) ListRequirements(ctx context.Context, req ListRequirementsRequest) ([]*domain.Requirement, error) {
	filters := repository.RequirementFilters{}
	if req.Mine {
		// Owners see their full history; the status filter is ignored on
		// purpose so closed requirements never vanish from /me.
		filters.BuyerID = req.CallerID
	} else {
		filters.Status = req.Status
		if filters.Status == "" {
			filters.Status = domain.RequirementStatusOpen
		}
	}

	return s.requirements.ListRequirements(ctx, filters)
}

func (s *requirementService) UpdateRequirement(ctx context.Context, req UpdateRequirementRequest) (*domain.Requirement, error) {
	upd := repository.RequirementUpdate{
		ProductName:        req.ProductName,
		Details:            req.Details,
		Quantity:           req.Quantity,
		LocationPreference: req.LocationPreference,
		City:               req.City,
		Status:             req.Status,
	}
	if upd.IsEmpty() {
		return nil, domain.NewError(domain.ErrValidation, "No valid fields provided")
	}

	requirement, err := s.requirements.UpdateRequirement(ctx, req.ID, req.BuyerID, upd)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewError(domain.ErrNotFound, "Requirement not found or forbidden")
		}
		return nil, err
	}

	return requirement, nil
}

func (s *requirementService) CloseRequirement(ctx context.Context, id, buyerID string) error {
	err := s.requirements.CloseRequirement(ctx, id, buyerID)
	if err != nil {
		if isNoRows(err) {
			return domain.NewError(domain.ErrNotFound, "Requirement not found or already closed")
		}
		return err
	}

	s.logger.Info("requirement closed, leads force-closed",
		zap.String("requirement_id", id),
		zap.String("buyer_id", buyerID),
	)

	return nil
}

func (s *requirementService) DeleteRequirement(ctx context.Context, id, buyerID string) error {
	err := s.requirements.DeleteRequirement(ctx, id, buyerID)
	if err != nil {
		if isNoRows(err) {
			return domain.NewError(domain.ErrNotFound, "Requirement not found or forbidden")
		}
		return err
	}

	s.logger.Info("requirement deleted",
		zap.String("requirement_id", id),
		zap.String("buyer_id", buyerID),
	)

	return nil
}

func (s *requirementService) DeleteAllRequirements(ctx context.Context, buyerID string) (int64, error) {
	count, err := s.requirements.DeleteAllByBuyer(ctx, buyerID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, domain.NewError(domain.ErrNotFound, "No requirements found")
	}
	return count, nil
}

func (s *requirementService) SelectSeller(ctx context.Context, requirementID, buyerID, sellerID string) error {
	if requirementID == "" || sellerID == "" {
		return domain.NewError(domain.ErrValidation, "requirementId and sellerId required")
	}

	if err := s.requirements.SelectSeller(ctx, requirementID, buyerID, sellerID); err != nil {
		return err
	}

	s.logger.Info("seller selected, requirement closed",
		zap.String("requirement_id", requirementID),
		zap.String("seller_id", sellerID),
	)

	return nil
}
