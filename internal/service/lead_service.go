package service

import (
	"context"
	"errors"
	"strings"

	"lead-service/internal/domain"
	"lead-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier pushes an already-committed event to a connected client. It is
// best-effort process-local state, never a source of truth for delivery.
type Notifier interface {
	Push(userID string, event any)
}

// LeadService is the seller side of the workflow engine.
type LeadService interface {
	BuyLead(ctx context.Context, req BuyLeadRequest) (*BuyLeadResponse, error)
	CancelLead(ctx context.Context, leadID, sellerID string) (*domain.Lead, error)
	ContactedRequirements(ctx context.Context, sellerID string) ([]*domain.ContactedRequirement, error)
}

type leadService struct {
	leads        repository.LeadsRepository
	requirements repository.RequirementsRepository
	identity     IdentityClient
	sync         *IdentitySync
	chat         ChatClient
	notifier     Notifier
	logger       *zap.Logger
}

// NewLeadService wires the workflow engine. notifier may be nil.
func NewLeadService(
	leads repository.LeadsRepository,
	requirements repository.RequirementsRepository,
	identity IdentityClient,
	sync *IdentitySync,
	chat ChatClient,
	notifier Notifier,
	logger *zap.Logger,
) LeadService {
	return &leadService{
		leads:        leads,
		requirements: requirements,
		identity:     identity,
		sync:         sync,
		chat:         chat,
		notifier:     notifier,
		logger:       logger,
	}
}

// BuyLeadRequest is a seller's claim against an open requirement.
type BuyLeadRequest struct {
	SellerID      string
	RequirementID string
	Message       string
}

// BuyLeadResponse reports both outcomes of buy-lead: the committed lead and
// the best-effort chat delivery that follows it. ChatDelivered false means
// the lead exists but the opening message was not sent; the lead is not
// rolled back.
type BuyLeadResponse struct {
	LeadID         string `json:"leadId"`
	ChatDelivered  bool   `json:"chatDelivered"`
	ConversationID string `json:"conversationId,omitempty"`
}

// LeadCreatedEvent is pushed to the buyer's live socket after commit.
type LeadCreatedEvent struct {
	Type          string `json:"type"`
	LeadID        string `json:"leadId"`
	RequirementID string `json:"requirementId"`
	SellerID      string `json:"sellerId"`
	SellerName    string `json:"sellerName,omitempty"`
}

func (s *leadService) BuyLead(ctx context.Context, req BuyLeadRequest) (*BuyLeadResponse, error) {
	if req.RequirementID == "" || strings.TrimSpace(req.Message) == "" {
		return nil, domain.NewError(domain.ErrValidation, "requirementId and message are required")
	}

	requirement, err := s.requirements.GetRequirement(ctx, req.RequirementID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || isNoRows(err) {
			return nil, domain.NewError(domain.ErrNotFound, "Requirement not found")
		}
		return nil, err
	}
	if requirement.Status == domain.RequirementStatusClosed {
		return nil, domain.NewError(domain.ErrConflict, "Requirement already closed")
	}

	// Verify the caller is a seller against the identity service. A
	// definitive not-found rejects; an unreachable identity service does
	// not block the purchase (the shadow sync stubs below).
	sellerRemote, err := s.identity.FetchUser(ctx, req.SellerID)
	switch {
	case err == nil:
		if sellerRemote.Role != domain.RoleSeller {
			return nil, domain.NewError(domain.ErrForbidden, "Invalid seller account")
		}
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.NewError(domain.ErrNotFound, "Seller not found")
	default:
		sellerRemote = nil
	}

	buyerRemote, err := s.identity.FetchUser(ctx, requirement.BuyerID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.NewError(domain.ErrNotFound, "Buyer not found")
	default:
		buyerRemote = nil
	}

	// Hard FK guarantee before the lead insert.
	sellerShadow, err := s.sync.EnsureKnown(ctx, req.SellerID, sellerRemote, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	buyerShadow, err := s.sync.EnsureKnown(ctx, requirement.BuyerID, buyerRemote, domain.RoleBuyer)
	if err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		ID:            uuid.NewString(),
		RequirementID: requirement.ID,
		SellerID:      req.SellerID,
		BuyerID:       requirement.BuyerID,
		Status:        domain.LeadStatusProcessing,
	}
	if err := s.leads.CreateLead(ctx, lead); err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.String("requirement_id", requirement.ID),
		zap.String("seller_id", req.SellerID),
	)

	resp := &BuyLeadResponse{LeadID: lead.ID}

	// Post-commit side effects. The lead exists regardless of what happens
	// from here on; a failed delivery degrades the response, it does not
	// undo the lead.
	delivery, err := s.chat.SendMessage(ctx, ChatMessage{
		Sender:          req.SellerID,
		Recipient:       requirement.BuyerID,
		RequirementID:   requirement.ID,
		RequirementName: requirement.ProductName,
		SellerName:      sellerShadow.Name,
		BuyerName:       buyerShadow.Name,
		Message:         req.Message,
	})
	if err != nil {
		s.logger.Warn("lead committed but chat delivery failed",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
	} else {
		resp.ChatDelivered = true
		resp.ConversationID = delivery.ConversationID
	}

	if s.notifier != nil {
		s.notifier.Push(requirement.BuyerID, LeadCreatedEvent{
			Type:          "lead.created",
			LeadID:        lead.ID,
			RequirementID: requirement.ID,
			SellerID:      req.SellerID,
			SellerName:    sellerShadow.Name,
		})
	}

	return resp, nil
}

func (s *leadService) CancelLead(ctx context.Context, leadID, sellerID string) (*domain.Lead, error) {
	if leadID == "" {
		return nil, domain.NewError(domain.ErrValidation, "lead id is required")
	}

	lead, err := s.leads.CancelLead(ctx, leadID, sellerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead cancelled, requirement reopened",
		zap.String("lead_id", lead.ID),
		zap.String("requirement_id", lead.RequirementID),
	)

	return lead, nil
}

func (s *leadService) ContactedRequirements(ctx context.Context, sellerID string) ([]*domain.ContactedRequirement, error) {
	return s.leads.ListContactedBySeller(ctx, sellerID)
}
