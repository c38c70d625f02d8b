package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

// mockOrderStore is an in-memory domain.OrderStore with func-field overrides.
type mockOrderStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	byPay  map[string]uuid.UUID

	createOrderFunc         func(ctx context.Context, order *domain.Order) error
	advancePayoutStatusFunc func(ctx context.Context, orderID uuid.UUID, sellerEmail string, from, to domain.PayoutStatus) error
	setShipmentRefFunc      func(ctx context.Context, orderID uuid.UUID, ref string) error

	calls []string
}

var _ domain.OrderStore = (*mockOrderStore)(nil)

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders: make(map[uuid.UUID]*domain.Order),
		byPay:  make(map[string]uuid.UUID),
	}
}

func (m *mockOrderStore) log(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	m.log("CreateOrder")
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, order)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byPay[order.Payment.ExternalID]; dup {
		return domain.ErrPaymentAlreadyProcessed
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	m.orders[order.ID] = &cp
	m.byPay[order.Payment.ExternalID] = order.ID
	return nil
}

func (m *mockOrderStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	m.log("GetOrder")
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	m.log("ListOrders")
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Order
	for _, o := range m.orders {
		switch filter.Role {
		case domain.RoleAdmin:
			out = append(out, *o)
		case domain.RoleBusiness:
			if strings.EqualFold(o.Buyer.Email, filter.Identifier) {
				out = append(out, *o)
			}
		case domain.RoleFarmer:
			cp := *o
			cp.SellerGroups = nil
			for _, g := range o.SellerGroups {
				if g.Seller.Name == filter.Identifier {
					cp.SellerGroups = append(cp.SellerGroups, g)
				}
			}
			if len(cp.SellerGroups) > 0 {
				out = append(out, cp)
			}
		}
	}
	return out, nil
}

func (m *mockOrderStore) SetShipmentRef(ctx context.Context, orderID uuid.UUID, ref string) error {
	m.log("SetShipmentRef")
	if m.setShipmentRefFunc != nil {
		return m.setShipmentRefFunc(ctx, orderID, ref)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.ShipmentRef = ref
	return nil
}

func (m *mockOrderStore) AdvancePayoutStatus(ctx context.Context, orderID uuid.UUID, sellerEmail string, from, to domain.PayoutStatus) error {
	m.log("AdvancePayoutStatus")
	if m.advancePayoutStatusFunc != nil {
		return m.advancePayoutStatusFunc(ctx, orderID, sellerEmail, from, to)
	}

	if !from.CanAdvanceTo(to) {
		return domain.ErrPayoutTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for i := range o.SellerGroups {
		g := &o.SellerGroups[i]
		if strings.EqualFold(g.Seller.Email, sellerEmail) {
			if g.PayoutStatus != from {
				return domain.ErrPayoutTransition
			}
			g.PayoutStatus = to
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

func (m *mockOrderStore) AppendReview(ctx context.Context, orderID, lineID uuid.UUID, review domain.Review) error {
	m.log("AppendReview")
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	_, line, err := o.FindLine(lineID)
	if err != nil {
		return err
	}
	for _, r := range line.Reviews {
		if r.ReviewerName == review.ReviewerName {
			return domain.ErrDuplicateReview
		}
	}
	line.Reviews = append(line.Reviews, review)
	return nil
}

func (m *mockOrderStore) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.ProductReviews, error) {
	m.log("ListReviews")
	m.mu.Lock()
	defer m.mu.Unlock()

	index := make(map[string]int)
	var out []domain.ProductReviews
	for _, o := range m.orders {
		for _, g := range o.SellerGroups {
			for _, l := range g.Lines {
				for _, r := range l.Reviews {
					if filter.ProductRef != "" && filter.ProductRef != l.ProductRef {
						continue
					}
					if filter.ReviewerName != "" && filter.ReviewerName != r.ReviewerName {
						continue
					}
					i, ok := index[l.ProductRef]
					if !ok {
						i = len(out)
						index[l.ProductRef] = i
						out = append(out, domain.ProductReviews{ProductRef: l.ProductRef, ProductName: l.Name})
					}
					out[i].Reviews = append(out[i].Reviews, r)
				}
			}
		}
	}
	return out, nil
}

// mockNotificationStore is an in-memory domain.NotificationStore keyed by the
// (recipient, product) pair.
type mockNotificationStore struct {
	mu    sync.Mutex
	byKey map[string]*domain.Notification
}

var _ domain.NotificationStore = (*mockNotificationStore)(nil)

func newMockNotificationStore() *mockNotificationStore {
	return &mockNotificationStore{byKey: make(map[string]*domain.Notification)}
}

func (m *mockNotificationStore) Upsert(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := n.RecipientID.String() + "|" + n.ProductID.String()
	if _, exists := m.byKey[key]; exists {
		return nil
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	m.byKey[key] = &cp
	return nil
}

func (m *mockNotificationStore) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Notification
	for _, n := range m.byKey {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, notificationID uuid.UUID) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.byKey {
		if n.ID == notificationID {
			n.Read = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

// mockDirectory is a fixed-list domain.RecipientDirectory.
type mockDirectory struct {
	recipients []domain.Recipient
}

var _ domain.RecipientDirectory = (*mockDirectory)(nil)

func (m *mockDirectory) ListByGradePreference(ctx context.Context, grade string) ([]domain.Recipient, error) {
	var out []domain.Recipient
	for _, r := range m.recipients {
		if r.GradePrefs[grade] {
			out = append(out, r)
		}
	}
	return out, nil
}
