package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"lead-service/internal/domain"
	"lead-service/internal/service"

	"go.uber.org/zap"
)

// LeadHandler serves the seller-facing lead endpoints.
type LeadHandler struct {
	leads        service.LeadService
	stats        service.StatsService
	logger       *zap.Logger
	exposeDetail bool
}

func NewLeadHandler(leads service.LeadService, stats service.StatsService, logger *zap.Logger, exposeDetail bool) *LeadHandler {
	return &LeadHandler{
		leads:        leads,
		stats:        stats,
		logger:       logger,
		exposeDetail: exposeDetail,
	}
}

// ServeHTTP dispatches /leads routes.
func (h *LeadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/leads/buy" && r.Method == http.MethodPost:
		h.Buy(w, r)
	case path == "/leads/stats" && r.Method == http.MethodGet:
		h.Stats(w, r)
	case path == "/leads/contacted" && r.Method == http.MethodGet:
		h.Contacted(w, r)
	case path == "/leads/export" && r.Method == http.MethodGet:
		h.Export(w, r)
	case strings.HasPrefix(path, "/leads/") && strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPut:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/leads/"), "/cancel")
		h.Cancel(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type buyLeadBody struct {
	RequirementID string `json:"requirementId"`
	Message       string `json:"message"`
}

func (h *LeadHandler) Buy(w http.ResponseWriter, r *http.Request) {
	sellerID := userID(r)
	if sellerID == "" {
		unauthorized(w)
		return
	}

	var body buyLeadBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		respondError(w, h.logger, h.exposeDetail, domain.NewError(domain.ErrValidation, "invalid JSON body"))
		return
	}

	resp, err := h.leads.BuyLead(r.Context(), service.BuyLeadRequest{
		SellerID:      sellerID,
		RequirementID: body.RequirementID,
		Message:       body.Message,
	})
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	h.stats.InvalidateSellerStats(r.Context(), sellerID)

	// The lead is committed either way; the message only reflects whether
	// the chat handoff made it.
	message := "Lead accepted & message sent"
	if !resp.ChatDelivered {
		message = "Lead accepted, message delivery failed"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        message,
		"leadId":         resp.LeadID,
		"chatDelivered":  resp.ChatDelivered,
		"conversationId": resp.ConversationID,
	})
}

func (h *LeadHandler) Cancel(w http.ResponseWriter, r *http.Request, id string) {
	sellerID := userID(r)
	if sellerID == "" {
		unauthorized(w)
		return
	}

	if _, err := h.leads.CancelLead(r.Context(), id, sellerID); err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	h.stats.InvalidateSellerStats(r.Context(), sellerID)

	writeJSON(w, http.StatusOK, map[string]any{"message": "Lead cancelled successfully"})
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sellerID := userID(r)
	if sellerID == "" {
		unauthorized(w)
		return
	}

	stats, err := h.stats.SellerStats(r.Context(), sellerID)
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *LeadHandler) Contacted(w http.ResponseWriter, r *http.Request) {
	sellerID := userID(r)
	if sellerID == "" {
		unauthorized(w)
		return
	}

	items, err := h.leads.ContactedRequirements(r.Context(), sellerID)
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	sellerID := userID(r)
	if sellerID == "" {
		unauthorized(w)
		return
	}

	items, err := h.leads.ContactedRequirements(r.Context(), sellerID)
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	data, err := GenerateLeadsExport(items)
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	filename := fmt.Sprintf("leads_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
