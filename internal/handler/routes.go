package handler

import (
	"net/http"

	"github.com/sahanr/harvestlink/internal/router"
)

// RegisterRoutes attaches every API route to the router.
func (h *Handler) RegisterRoutes(r *router.Router) {
	// Shipping
	r.Post("/api/shipping/quote", h.QuoteShipping)

	// Orders
	r.Post("/api/orders", h.SubmitOrder)
	r.Get("/api/orders/{id}", h.GetOrder)
	r.Get("/api/transactions/{role}", h.ListTransactions)
	r.Get("/api/transactions/{role}/{identifier}", h.ListTransactions)

	// Settlement
	r.Post("/api/orders/{id}/payouts/{seller}", h.IssuePayout)
	r.Post("/api/orders/{id}/payouts/{seller}/confirm", h.ConfirmPayout)

	// Reviews
	r.Post("/api/orders/{id}/lines/{line}/reviews", h.AddReview)
	r.Get("/api/reviews", h.ListReviews)

	// Catalog
	r.Post("/api/products", h.CreateProduct)
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
	r.Patch("/api/products/{id}/status", h.UpdateProductStatus)
	r.Delete("/api/products/{id}", h.DeleteProduct)
	r.Get("/api/farmers/{name}/stock", h.ListFarmerStock)

	// Notifications
	r.Get("/api/notifications/{recipient}", h.ListNotifications)
	r.Patch("/api/notifications/{id}/read", h.MarkNotificationRead)

	// Health
	r.Get("/health", h.Health)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
