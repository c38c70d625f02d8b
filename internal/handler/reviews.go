package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

type addReviewRequest struct {
	Rating       int32  `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment"`
	ReviewerName string `json:"reviewer_name" validate:"required"`
}

// AddReview appends a review to one product line of an order.
// POST /api/orders/{id}/lines/{line}/reviews
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	const op = "handler.review.add"

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid(op, "invalid order id"))
		return
	}
	lineID, err := uuid.Parse(r.PathValue("line"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid(op, "invalid product line id"))
		return
	}

	var req addReviewRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	review := domain.Review{
		Rating:       req.Rating,
		Comment:      req.Comment,
		ReviewerName: req.ReviewerName,
	}
	if err := h.reviews.AddReview(r.Context(), orderID, lineID, review); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, review)
}

// ListReviews aggregates reviews across all orders, optionally narrowed by
// product reference or reviewer.
// GET /api/reviews?product_ref=&reviewer=
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	filter := domain.ReviewFilter{
		ProductRef:   r.URL.Query().Get("product_ref"),
		ReviewerName: r.URL.Query().Get("reviewer"),
	}

	reviews, err := h.reviews.ListReviews(r.Context(), filter)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"products": reviews,
		"count":    len(reviews),
	})
}
