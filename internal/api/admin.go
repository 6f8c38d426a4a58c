package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/user"
)

var errUnknownSettlementStatus = errors.New("unknown settlement status")

type assignPartnerRequest struct {
	// PartnerID null unassigns the current partner.
	PartnerID *string `json:"partnerId"`
}

// AssignPartner assigns (or unassigns) a delivery partner to an order.
func (h *Handler) AssignPartner(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != user.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden", "admin only")
		return
	}

	var req assignPartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "malformed request body")
		return
	}

	updated, err := h.delivery.Assign(r.Context(), r.PathValue("id"), req.PartnerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domainToOrderDTO(updated))
}

// ListSellerAnalytics returns the calling seller's financial records.
func (h *Handler) ListSellerAnalytics(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != user.RoleSeller {
		writeError(w, http.StatusForbidden, "Forbidden", "seller only")
		return
	}

	records, err := h.analytics.ListBySeller(r.Context(), caller.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	dtos := make([]analyticsDTO, len(records))
	for i := range records {
		dtos[i] = domainToAnalyticsDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": dtos})
}

// GetAnalyticsRecord fetches one analytics record.
func (h *Handler) GetAnalyticsRecord(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != user.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden", "admin only")
		return
	}

	rec, err := h.analytics.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domainToAnalyticsDTO(rec))
}

type updateSettlementRequest struct {
	PlatformCommissionStatus *string `json:"platformCommissionStatus"`
	DeliveryPartnerFeeStatus *string `json:"deliveryPartnerFeeStatus"`
}

// UpdateSettlement updates either settlement flag independently; omitted
// fields are left unchanged.
func (h *Handler) UpdateSettlement(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != user.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden", "admin only")
		return
	}

	var req updateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "malformed request body")
		return
	}

	platform, err := parseSettlement(req.PlatformCommissionStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid platformCommissionStatus")
		return
	}
	fee, err := parseSettlement(req.DeliveryPartnerFeeStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid deliveryPartnerFeeStatus")
		return
	}
	if platform == nil && fee == nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "no settlement fields provided")
		return
	}

	rec, err := h.analytics.UpdateSettlement(r.Context(), r.PathValue("id"), platform, fee)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domainToAnalyticsDTO(rec))
}

func parseSettlement(s *string) (*analytics.SettlementStatus, error) {
	if s == nil {
		return nil, nil
	}
	switch strings.ToUpper(strings.TrimSpace(*s)) {
	case string(analytics.SettlementPending):
		v := analytics.SettlementPending
		return &v, nil
	case string(analytics.SettlementCompleted):
		v := analytics.SettlementCompleted
		return &v, nil
	default:
		return nil, errUnknownSettlementStatus
	}
}
