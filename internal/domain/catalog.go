package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductStatus is the catalog listing lifecycle.
type ProductStatus string

const (
	ProductPending  ProductStatus = "Pending"
	ProductApproved ProductStatus = "Approved"
	ProductRejected ProductStatus = "Rejected"
)

// Valid reports whether the status is a known value.
func (s ProductStatus) Valid() bool {
	return s == ProductPending || s == ProductApproved || s == ProductRejected
}

// Catalog-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// Product is a live catalog listing posted by a farmer. Orders never
// reference it directly; they carry immutable snapshots of its fields.
type Product struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	QuantityKg    int32         `json:"quantity_kg"`
	Grade         string        `json:"grade"`
	PriceCents    int64         `json:"price_cents"`
	ImageURL      string        `json:"image_url"`
	Status        ProductStatus `json:"status"`
	FarmerName    string        `json:"farmer_name"`
	FarmerEmail   string        `json:"farmer_email"`
	FarmerAddress string        `json:"farmer_address"`
	OriginCity    string        `json:"origin_city"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Validate checks a new listing before it enters the catalog.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("product.validate", "name", "product name is required")
	}
	if p.QuantityKg <= 0 {
		return NewValidationError("product.validate", "quantity_kg", "quantity must be positive")
	}
	if strings.TrimSpace(p.Grade) == "" {
		return NewValidationError("product.validate", "grade", "grade is required")
	}
	if p.PriceCents <= 0 {
		return NewValidationError("product.validate", "price_cents", "price must be positive")
	}
	return nil
}

// Recipient is a business user eligible for listing notifications.
// GradePrefs holds the sorting-quality grades the user opted into.
type Recipient struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	GradePrefs map[string]bool `json:"grade_prefs"`
}

// Notification is one fan-out record: at most one exists per
// (recipient, product) pair, and Read only ever flips false to true.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification-related domain errors.
var (
	ErrNotificationNotFound = &Error{Code: ENOTFOUND, Message: "Notification not found"}
)
