package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransportMode selects how a completed order reaches the buyer.
type TransportMode string

const (
	TransportPickup   TransportMode = "PICKUP"
	TransportDelivery TransportMode = "DELIVERY"
)

// Valid reports whether the transport mode is a known value.
func (m TransportMode) Valid() bool {
	return m == TransportPickup || m == TransportDelivery
}

// PaymentStatus is the lifecycle state of an external payment capture.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PayoutStatus tracks one seller group's settlement progress.
// The state machine is strictly forward: PENDING -> LINK_SENT -> PAID.
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "PENDING"
	PayoutLinkSent PayoutStatus = "LINK_SENT"
	PayoutPaid     PayoutStatus = "PAID"
)

// CanAdvanceTo reports whether next is the legal successor of s.
// PAID is terminal and no state may be skipped or revisited.
func (s PayoutStatus) CanAdvanceTo(next PayoutStatus) bool {
	switch s {
	case PayoutPending:
		return next == PayoutLinkSent
	case PayoutLinkSent:
		return next == PayoutPaid
	default:
		return false
	}
}

// Order-related domain errors.
var (
	ErrOrderNotFound           = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrProductLineNotFound     = &Error{Code: ENOTFOUND, Message: "Product line not found in order"}
	ErrPaymentNotCompleted     = &Error{Code: EPAYMENT, Message: "Payment has not completed"}
	ErrMissingPaymentID        = &Error{Code: EINVALID, Message: "External payment identifier is missing"}
	ErrPaymentAlreadyProcessed = &Error{Code: ECONFLICT, Message: "Payment identifier already processed"}
	ErrEmptyCart               = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrSellerIdentityMismatch  = &Error{Code: EINVALID, Message: "Cart lines disagree on seller identity"}
	ErrTotalMismatch           = &Error{Code: EINVALID, Message: "Order total does not match product lines and transport cost"}
	ErrPayoutTransition        = &Error{Code: ECONFLICT, Message: "Payout status transition not allowed"}
	ErrDuplicateReview         = &Error{Code: ECONFLICT, Message: "Reviewer already reviewed this product line"}
)

// Buyer is the purchasing business, snapshotted onto the order at creation.
type Buyer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// SellerIdentity is a denormalized copy of a farmer's profile taken at order
// time. The live profile may change later without affecting historical orders.
type SellerIdentity struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Review is one buyer review attached to a product line after delivery.
type Review struct {
	Rating       int32     `json:"rating"` // 1..5
	Comment      string    `json:"comment"`
	ReviewerName string    `json:"reviewer_name"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Validate checks review content before it is appended to a line.
func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return Invalid("review.validate", "rating must be between 1 and 5")
	}
	if strings.TrimSpace(r.ReviewerName) == "" {
		return NewValidationError("review.validate", "reviewer_name", "reviewer name is required")
	}
	return nil
}

// ProductLine is a priced quantity of one catalog product within a seller
// group. Name, price, grade and image are snapshots at order time; ProductRef
// is a weak reference and stays valid even if the catalog product is deleted.
type ProductLine struct {
	ID             uuid.UUID `json:"id"`
	ProductRef     string    `json:"product_ref"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int32     `json:"quantity"`
	Grade          string    `json:"grade"`
	ImageURL       string    `json:"image_url"`
	Reviews        []Review  `json:"reviews"`
}

// SubtotalCents returns unit price times quantity for this line.
func (l ProductLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// SellerGroup is the portion of an order belonging to one seller, with its
// own payout lifecycle independent of sibling groups.
type SellerGroup struct {
	ID           uuid.UUID      `json:"id"`
	Seller       SellerIdentity `json:"seller"`
	Lines        []ProductLine  `json:"lines"`
	PayoutStatus PayoutStatus   `json:"payout_status"`
}

// ShareCents is the seller's portion of the order proceeds: the sum of the
// group's line subtotals. Transport cost is never part of a seller share.
func (g SellerGroup) ShareCents() int64 {
	var total int64
	for _, l := range g.Lines {
		total += l.SubtotalCents()
	}
	return total
}

// Payment records the verified external payment capture that created the order.
type Payment struct {
	ExternalID  string        `json:"external_id"`
	Method      string        `json:"method"`
	AmountCents int64         `json:"amount_cents"`
	Status      PaymentStatus `json:"status"`
	CapturedAt  time.Time     `json:"captured_at"`
}

// Order is the root aggregate: one persisted record per completed checkout.
// It exclusively owns its seller groups and product lines.
type Order struct {
	ID                 uuid.UUID     `json:"id"`
	Buyer              Buyer         `json:"buyer"`
	SellerGroups       []SellerGroup `json:"seller_groups"`
	TransportMode      TransportMode `json:"transport_mode"`
	TransportCostCents int64         `json:"transport_cost_cents"`
	TotalPriceCents    int64         `json:"total_price_cents"`
	Payment            Payment       `json:"payment"`
	ShipmentRef        string        `json:"shipment_ref,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// SubtotalCents sums every product line subtotal across all seller groups.
func (o *Order) SubtotalCents() int64 {
	var total int64
	for _, g := range o.SellerGroups {
		total += g.ShareCents()
	}
	return total
}

// ComputeTotalCents returns the invariant total: line subtotals plus transport.
func (o *Order) ComputeTotalCents() int64 {
	return o.SubtotalCents() + o.TransportCostCents
}

// FindLine locates a product line by ID across all seller groups.
// Returns the owning group index, the line, or ErrProductLineNotFound.
func (o *Order) FindLine(lineID uuid.UUID) (*SellerGroup, *ProductLine, error) {
	for gi := range o.SellerGroups {
		g := &o.SellerGroups[gi]
		for li := range g.Lines {
			if g.Lines[li].ID == lineID {
				return g, &g.Lines[li], nil
			}
		}
	}
	return nil, nil, ErrProductLineNotFound
}

// FindSellerGroup locates a seller group by the seller's email.
func (o *Order) FindSellerGroup(sellerEmail string) (*SellerGroup, error) {
	for i := range o.SellerGroups {
		if strings.EqualFold(o.SellerGroups[i].Seller.Email, sellerEmail) {
			return &o.SellerGroups[i], nil
		}
	}
	return nil, NotFound("order.seller_group", "seller group", sellerEmail)
}

// Validate checks the aggregate invariants that must hold at persistence time.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.Buyer.Email) == "" {
		return NewValidationError("order.validate", "buyer.email", "buyer email is required")
	}
	if !o.TransportMode.Valid() {
		return Invalid("order.validate", "transport mode must be PICKUP or DELIVERY")
	}
	if o.TransportCostCents < 0 {
		return Invalid("order.validate", "transport cost must not be negative")
	}
	if o.TransportMode == TransportPickup && o.TransportCostCents != 0 {
		return Invalid("order.validate", "transport cost must be zero for pickup orders")
	}
	if len(o.SellerGroups) == 0 {
		return Invalid("order.validate", "order must contain at least one seller group")
	}
	for _, g := range o.SellerGroups {
		if strings.TrimSpace(g.Seller.Email) == "" {
			return NewValidationError("order.validate", "seller.email", "seller email is required")
		}
		if len(g.Lines) == 0 {
			return Invalid("order.validate", "seller group must contain at least one product line")
		}
		for _, l := range g.Lines {
			if l.Quantity <= 0 {
				return Invalid("order.validate", "product line quantity must be positive")
			}
			if l.UnitPriceCents < 0 {
				return Invalid("order.validate", "product line price must not be negative")
			}
		}
	}
	if o.TotalPriceCents != o.ComputeTotalCents() {
		return ErrTotalMismatch
	}
	return nil
}

// Role scopes the order query surface to a caller capability.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFarmer   Role = "farmer"
	RoleBusiness Role = "business"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFarmer || r == RoleBusiness
}

// OrderFilter is a capability-scoped predicate for listing orders.
// Admin sees everything; a farmer sees orders containing their groups; a
// business sees its own orders. One query contract, three predicates.
type OrderFilter struct {
	Role       Role
	Identifier string // farmer name or business email depending on role
}

// ReviewFilter narrows the cross-order review listing.
type ReviewFilter struct {
	ProductRef   string
	ReviewerName string
}

// ProductReviews groups the reviews collected for one product reference
// across all persisted orders.
type ProductReviews struct {
	ProductRef  string   `json:"product_ref"`
	ProductName string   `json:"product_name"`
	Reviews     []Review `json:"reviews"`
}
