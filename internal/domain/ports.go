package domain

import (
	"context"

	"github.com/google/uuid"
)

// OrderStore persists the Order aggregate. Each method is atomic with respect
// to one aggregate; payout transitions and review appends are scoped so that
// concurrent work on different seller groups never serializes on the order.
type OrderStore interface {
	// CreateOrder inserts the aggregate in one transaction.
	// Returns ErrPaymentAlreadyProcessed if the external payment identifier
	// was already used by a previous order.
	CreateOrder(ctx context.Context, order *Order) error

	// GetOrder loads the full aggregate.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)

	// ListOrders returns orders visible to the capability-scoped filter,
	// newest first. A farmer's view contains only that farmer's groups.
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	// SetShipmentRef records the carrier shipment reference after the fact.
	SetShipmentRef(ctx context.Context, orderID uuid.UUID, ref string) error

	// AdvancePayoutStatus moves exactly one seller group from one payout
	// state to its successor. Returns ErrPayoutTransition if the group is
	// not currently in the from state, ErrOrderNotFound if order or group
	// does not exist.
	AdvancePayoutStatus(ctx context.Context, orderID uuid.UUID, sellerEmail string, from, to PayoutStatus) error

	// AppendReview attaches a review to one product line of one order.
	// Returns ErrOrderNotFound / ErrProductLineNotFound when the target is
	// missing and ErrDuplicateReview when the reviewer already reviewed
	// that line.
	AppendReview(ctx context.Context, orderID, lineID uuid.UUID, review Review) error

	// ListReviews collects reviews across all orders, optionally narrowed
	// by product reference and reviewer name.
	ListReviews(ctx context.Context, filter ReviewFilter) ([]ProductReviews, error)
}

// CatalogStore persists live product listings.
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	// ListApprovedByFarmer returns a farmer's approved stock.
	ListApprovedByFarmer(ctx context.Context, farmerName string) ([]Product, error)
	UpdateProductStatus(ctx context.Context, productID uuid.UUID, status ProductStatus) (*Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

// RecipientDirectory is the read-only user lookup used by the fan-out.
type RecipientDirectory interface {
	// ListByGradePreference returns recipients whose stored preferences
	// include the given grade.
	ListByGradePreference(ctx context.Context, grade string) ([]Recipient, error)
}

// NotificationStore persists fan-out records.
type NotificationStore interface {
	// Upsert creates the (recipient, product) notification if absent.
	// Replays are no-ops: the unique pair key guarantees at-most-once.
	Upsert(ctx context.Context, n *Notification) error

	// ListForRecipient returns a recipient's notifications, newest first.
	ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error)

	// MarkRead flips the read flag to true.
	MarkRead(ctx context.Context, notificationID uuid.UUID) (*Notification, error)
}
