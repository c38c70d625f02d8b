package handler

import (
	"net/http"

	"github.com/sahanr/harvestlink/internal/shipping"
)

type quoteRequest struct {
	DestinationCity string            `json:"destination_city" validate:"required"`
	Lines           []cartLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// QuoteShipping prices delivery for a cart.
// POST /api/shipping/quote
func (h *Handler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	quote, err := h.checkout.QuoteShipping(r.Context(), shipping.QuoteRequest{
		DestinationCity: req.DestinationCity,
		Lines:           toDomainCart(req.Lines).Lines,
	})
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, quote)
}
