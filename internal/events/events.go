package events

import (
	"context"
	"time"
)

// Subjects for marketplace lifecycle events.
const (
	SubjectOrderCreated    = "harvestlink.order.created"
	SubjectPayoutLinkSent  = "harvestlink.payout.link_sent"
	SubjectProductApproved = "harvestlink.product.approved"
)

// Publisher emits lifecycle events. Publishing is best effort at call sites;
// callers decide whether a publish failure is fatal.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// OrderCreated is emitted after a paid order is persisted.
type OrderCreated struct {
	OrderID     string    `json:"order_id"`
	BuyerName   string    `json:"buyer_name"`
	BuyerEmail  string    `json:"buyer_email"`
	TotalCents  int64     `json:"total_cents"`
	PaymentID   string    `json:"payment_id"`
	SellerCount int       `json:"seller_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// PayoutLinkSent is emitted after a settlement link is issued for a seller
// group.
type PayoutLinkSent struct {
	OrderID     string `json:"order_id"`
	SellerName  string `json:"seller_name"`
	SellerEmail string `json:"seller_email"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ApprovalURL string `json:"approval_url"`
}

// ProductApproved is emitted when an admin approves a catalog product.
type ProductApproved struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Grade       string `json:"grade"`
	FarmerName  string `json:"farmer_name"`
}
