package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/service"
)

type submitOrderRequest struct {
	Buyer              buyerRequest      `json:"buyer" validate:"required"`
	Lines              []cartLineRequest `json:"lines" validate:"required,min=1,dive"`
	TransportMode      string            `json:"transport_mode" validate:"required,oneof=PICKUP DELIVERY"`
	TransportCostCents int64             `json:"transport_cost_cents" validate:"min=0"`
	PaymentID          string            `json:"payment_id" validate:"required"`
}

// SubmitOrder records a paid order after verifying its payment capture.
// POST /api/orders
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.SubmitPaidOrder(r.Context(), service.SubmitOrderInput{
		Cart:               toDomainCart(req.Lines),
		Buyer:              toDomainBuyer(req.Buyer),
		TransportMode:      domain.TransportMode(req.TransportMode),
		TransportCostCents: req.TransportCostCents,
		PaymentID:          req.PaymentID,
	})
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, order)
}

// GetOrder loads one order by ID.
// GET /api/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.order.get", "invalid order id"))
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, order)
}

// ListTransactions returns the orders visible to a role-scoped caller.
// Admin sees everything; a farmer sees orders containing their groups (with
// sibling groups removed); a business sees its own orders.
// GET /api/transactions/{role}/{identifier}  (admin omits the identifier)
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.PathValue("role"))
	identifier := r.PathValue("identifier")

	orders, err := h.orders.ListOrders(r.Context(), domain.OrderFilter{
		Role:       role,
		Identifier: identifier,
	})
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}
