package httpapi

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"lead-service/internal/domain"
	"lead-service/internal/service"

	"go.uber.org/zap"
)

// RequirementHandler serves the buyer-facing requirement endpoints.
type RequirementHandler struct {
	requirements service.RequirementService
	logger       *zap.Logger
	exposeDetail bool
}

func NewRequirementHandler(requirements service.RequirementService, logger *zap.Logger, exposeDetail bool) *RequirementHandler {
	return &RequirementHandler{
		requirements: requirements,
		logger:       logger,
		exposeDetail: exposeDetail,
	}
}

// ServeHTTP dispatches /requirements routes.
func (h *RequirementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/requirements" && r.Method == http.MethodPost:
		h.Create(w, r)
	case path == "/requirements" && r.Method == http.MethodGet:
		h.List(w, r, false)
	case path == "/requirements" && r.Method == http.MethodDelete:
		h.DeleteAll(w, r)
	case path == "/requirements/me" && r.Method == http.MethodGet:
		h.List(w, r, true)
	case path == "/requirements/select-seller" && r.Method == http.MethodPost:
		h.SelectSeller(w, r)
	case strings.HasPrefix(path, "/requirements/") && strings.HasSuffix(path, "/close") && r.Method == http.MethodPut:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/requirements/"), "/close")
		h.Close(w, r, id)
	case strings.HasPrefix(path, "/requirements/") && r.Method == http.MethodGet:
		h.Get(w, r, strings.TrimPrefix(path, "/requirements/"))
	case strings.HasPrefix(path, "/requirements/") && r.Method == http.MethodPut:
		h.Update(w, r, strings.TrimPrefix(path, "/requirements/"))
	case strings.HasPrefix(path, "/requirements/") && r.Method == http.MethodDelete:
		h.Delete(w, r, strings.TrimPrefix(path, "/requirements/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type createRequirementBody struct {
	ProductRequirement string  `json:"product_requirement"`
	Category           string  `json:"category"`
	Quantity           string  `json:"quantity"`
	BudgetMin          float64 `json:"budget_min"`
	BudgetMax          float64 `json:"budget_max"`
	DeliveryLocation   string  `json:"delivery_location"`
	BuyerName          string  `json:"buyer_name"`
	BuyerPhone         string  `json:"buyer_phone"`
	BuyerEmail         string  `json:"buyer_email"`
	AdditionalDetails  string  `json:"additional_details"`
}

func (h *RequirementHandler) Create(w http.ResponseWriter, r *http.Request) {
	buyerID := userID(r)
	if buyerID == "" {
		unauthorized(w)
		return
	}

	var body createRequirementBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		respondError(w, h.logger, h.exposeDetail, domain.NewError(domain.ErrValidation, "invalid JSON body"))
		return
	}

	requirement, err := h.requirements.CreateRequirement(r.Context(), service.CreateRequirementRequest{
		BuyerID:            buyerID,
		ProductRequirement: body.ProductRequirement,
		Category:           body.Category,
		Quantity:           body.Quantity,
		BudgetMin:          body.BudgetMin,
		BudgetMax:          body.BudgetMax,
		DeliveryLocation:   body.DeliveryLocation,
		BuyerName:          body.BuyerName,
		BuyerPhone:         body.BuyerPhone,
		BuyerEmail:         body.BuyerEmail,
		AdditionalDetails:  body.AdditionalDetails,
	})
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Requirement created successfully",
		"data":    requirementToJSON(requirement),
	})
}

func (h *RequirementHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	requirement, err := h.requirements.GetRequirement(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}
	writeJSON(w, http.StatusOK, requirementToJSON(requirement))
}

func (h *RequirementHandler) List(w http.ResponseWriter, r *http.Request, mine bool) {
	callerID := userID(r)
	if mine && callerID == "" {
		unauthorized(w)
		return
	}

	items, err := h.requirements.ListRequirements(r.Context(), service.ListRequirementsRequest{
		CallerID: callerID,
		Mine:     mine,
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, requirementToJSON(item))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateRequirementBody struct {
	ProductName        *string `json:"product_name"`
	Details            *string `json:"details"`
	Quantity           *string `json:"quantity"`
	LocationPreference *string `json:"location_preference"`
	City               *string `json:"city"`
	Status             *string `json:"status"`
}

func (h *RequirementHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	buyerID := userID(r)
	if buyerID == "" {
		unauthorized(w)
		return
	}

	var body updateRequirementBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		respondError(w, h.logger, h.exposeDetail, domain.NewError(domain.ErrValidation, "invalid JSON body"))
		return
	}

	requirement, err := h.requirements.UpdateRequirement(r.Context(), service.UpdateRequirementRequest{
		ID:                 id,
		BuyerID:            buyerID,
		ProductName:        body.ProductName,
		Details:            body.Details,
		Quantity:           body.Quantity,
		LocationPreference: body.LocationPreference,
		City:               body.City,
		Status:             body.Status,
	})
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusOK, requirementToJSON(requirement))
}

func (h *RequirementHandler) Close(w http.ResponseWriter, r *http.Request, id string) {
	buyerID := userID(r)
	if buyerID == "" {
		unauthorized(w)
		return
	}

	if err := h.requirements.CloseRequirement(r.Context(), id, buyerID); err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Requirement closed successfully"})
}

func (h *RequirementHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	buyerID := userID(r)
	if buyerID == "" {
		unauthorized(w)
		return
	}

	if err := h.requirements.DeleteRequirement(r.Context(), id, buyerID); err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RequirementHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	buyerID := userID(r)
	if buyerID == "" {
		unauthorized(w)
		return
	}

	count, err := h.requirements.DeleteAllRequirements(r.Context(), buyerID)
	if err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "All requirements deleted successfully",
		"deletedCount": count,
	})
}

type selectSellerBody struct {
	RequirementID string `json:"requirementId"`
	SellerID      string `json:"sellerId"`
}

func (h *RequirementHandler) SelectSeller(w http.ResponseWriter, r *http.Request) {
	buyerID := userID(r)
	if buyerID == "" {
		unauthorized(w)
		return
	}

	var body selectSellerBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		respondError(w, h.logger, h.exposeDetail, domain.NewError(domain.ErrValidation, "invalid JSON body"))
		return
	}

	if err := h.requirements.SelectSeller(r.Context(), body.RequirementID, buyerID, body.SellerID); err != nil {
		respondError(w, h.logger, h.exposeDetail, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Seller selected successfully"})
}

func nullableString(ns sql.NullString) any {
	if ns.Valid {
		return ns.String
	}
	return nil
}

func requirementToJSON(req *domain.Requirement) map[string]any {
	return map[string]any{
		"id":                  req.ID,
		"buyer_id":            req.BuyerID,
		"product_name":        req.ProductName,
		"details":             nullableString(req.Details),
		"quantity":            nullableString(req.Quantity),
		"location_preference": nullableString(req.LocationPreference),
		"city":                nullableString(req.City),
		"status":              req.Status,
		"created_at":          req.CreatedAt.Format(time.RFC3339),
		"updated_at":          req.UpdatedAt.Format(time.RFC3339),
	}
}
