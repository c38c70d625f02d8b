package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

// IssuePayout creates a settlement link for one seller group and moves it to
// LINK_SENT.
// POST /api/orders/{id}/payouts/{seller}
func (h *Handler) IssuePayout(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.payout.issue", "invalid order id"))
		return
	}
	sellerEmail := r.PathValue("seller")

	issue, err := h.settlement.IssuePayout(r.Context(), orderID, sellerEmail)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, issue)
}

// ConfirmPayout marks a seller group PAID after its link was collected.
// POST /api/orders/{id}/payouts/{seller}/confirm
func (h *Handler) ConfirmPayout(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.payout.confirm", "invalid order id"))
		return
	}
	sellerEmail := r.PathValue("seller")

	if err := h.settlement.ConfirmPayout(r.Context(), orderID, sellerEmail); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"order_id":      orderID.String(),
		"seller_email":  sellerEmail,
		"payout_status": string(domain.PayoutPaid),
	})
}
