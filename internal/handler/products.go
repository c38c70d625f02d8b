package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

type createProductRequest struct {
	Name          string `json:"name" validate:"required"`
	QuantityKg    int32  `json:"quantity_kg" validate:"required,min=1"`
	Grade         string `json:"grade" validate:"required"`
	PriceCents    int64  `json:"price_cents" validate:"required,min=1"`
	ImageURL      string `json:"image_url"`
	FarmerName    string `json:"farmer_name" validate:"required"`
	FarmerEmail   string `json:"farmer_email" validate:"required,email"`
	FarmerAddress string `json:"farmer_address"`
	OriginCity    string `json:"origin_city"`
}

type updateProductStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

// CreateProduct posts a new listing in Pending status.
// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	product := &domain.Product{
		Name:          req.Name,
		QuantityKg:    req.QuantityKg,
		Grade:         req.Grade,
		PriceCents:    req.PriceCents,
		ImageURL:      req.ImageURL,
		FarmerName:    req.FarmerName,
		FarmerEmail:   req.FarmerEmail,
		FarmerAddress: req.FarmerAddress,
		OriginCity:    req.OriginCity,
	}
	if err := h.catalog.CreateProduct(r.Context(), product); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, product)
}

// GetProduct loads one listing.
// GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.product.get", "invalid product id"))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListProducts returns every listing.
// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// ListFarmerStock returns a farmer's approved listings.
// GET /api/farmers/{name}/stock
func (h *Handler) ListFarmerStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListFarmerStock(r.Context(), r.PathValue("name"))
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// UpdateProductStatus moves a listing through its approval lifecycle.
// Approval triggers the notification fan-out.
// PATCH /api/products/{id}/status
func (h *Handler) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.product.status", "invalid product id"))
		return
	}

	var req updateProductStatusRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	product, err := h.catalog.SetProductStatus(r.Context(), productID, domain.ProductStatus(req.Status))
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a listing. Orders keep their snapshots.
// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.product.delete", "invalid product id"))
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusNoContent, nil)
}
