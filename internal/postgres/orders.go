package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahanr/harvestlink/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that OrderStore implements domain.OrderStore.
var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// CreateOrder inserts the whole aggregate in one transaction. The unique
// constraint on payment_id makes replays of the same external payment fail
// with ErrPaymentAlreadyProcessed instead of creating a second order.
func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	const op = "postgres.order.Create"

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var capturedAt pgtype.Timestamptz
	if !order.Payment.CapturedAt.IsZero() {
		capturedAt = pgtype.Timestamptz{Time: order.Payment.CapturedAt, Valid: true}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, buyer_name, buyer_email, buyer_address, buyer_city,
			transport_mode, transport_cost_cents, total_price_cents,
			payment_id, payment_method, payment_amount_cents, payment_status,
			payment_captured_at, shipment_ref, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.ID.String(), order.Buyer.Name, order.Buyer.Email, order.Buyer.Address, order.Buyer.City,
		string(order.TransportMode), order.TransportCostCents, order.TotalPriceCents,
		order.Payment.ExternalID, order.Payment.Method, order.Payment.AmountCents, string(order.Payment.Status),
		capturedAt, order.ShipmentRef, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_payment_id_unique") {
			return domain.ErrPaymentAlreadyProcessed
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to insert order")
	}

	for gi := range order.SellerGroups {
		g := &order.SellerGroups[gi]
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		if g.PayoutStatus == "" {
			g.PayoutStatus = domain.PayoutPending
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO order_seller_groups (
				id, order_id, seller_name, seller_email, seller_address,
				seller_city, payout_status, position
			) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8)`,
			g.ID.String(), order.ID.String(), g.Seller.Name, g.Seller.Email, g.Seller.Address,
			g.Seller.City, string(g.PayoutStatus), gi,
		)
		if err != nil {
			return domain.WrapError(err, domain.EINTERNAL, op, "failed to insert seller group")
		}

		for li := range g.Lines {
			l := &g.Lines[li]
			if l.ID == uuid.Nil {
				l.ID = uuid.New()
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO order_product_lines (
					id, group_id, product_ref, name, unit_price_cents,
					quantity, grade, image_url, position
				) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9)`,
				l.ID.String(), g.ID.String(), l.ProductRef, l.Name, l.UnitPriceCents,
				l.Quantity, l.Grade, l.ImageURL, li,
			)
			if err != nil {
				return domain.WrapError(err, domain.EINTERNAL, op, "failed to insert product line")
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to commit order")
	}
	return nil
}

// GetOrder loads the full aggregate.
func (s *OrderStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const op = "postgres.order.Get"

	row := s.pool.QueryRow(ctx, `
		SELECT id::text, buyer_name, buyer_email, buyer_address, buyer_city,
		       transport_mode, transport_cost_cents, total_price_cents,
		       payment_id, payment_method, payment_amount_cents, payment_status,
		       payment_captured_at, shipment_ref, created_at
		FROM orders WHERE id = $1::uuid`,
		orderID.String())

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order")
	}

	orders := []domain.Order{*order}
	if err := s.attachGroups(ctx, orders, ""); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order contents")
	}
	return &orders[0], nil
}

// ListOrders returns the orders visible to the filter, newest first. The
// farmer view also narrows each order down to that farmer's groups.
func (s *OrderStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	const op = "postgres.order.List"

	if !filter.Role.Valid() {
		return nil, domain.Invalid(op, "unknown role")
	}

	query := `
		SELECT id::text, buyer_name, buyer_email, buyer_address, buyer_city,
		       transport_mode, transport_cost_cents, total_price_cents,
		       payment_id, payment_method, payment_amount_cents, payment_status,
		       payment_captured_at, shipment_ref, created_at
		FROM orders o`
	var args []any
	groupFilter := ""

	switch filter.Role {
	case domain.RoleAdmin:
		// No predicate.
	case domain.RoleBusiness:
		query += ` WHERE lower(o.buyer_email) = lower($1)`
		args = append(args, filter.Identifier)
	case domain.RoleFarmer:
		query += ` WHERE EXISTS (
			SELECT 1 FROM order_seller_groups g
			WHERE g.order_id = o.id AND g.seller_name = $1)`
		args = append(args, filter.Identifier)
		groupFilter = filter.Identifier
	}
	query += ` ORDER BY o.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan order")
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list orders")
	}

	if err := s.attachGroups(ctx, orders, groupFilter); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order contents")
	}
	return orders, nil
}

// SetShipmentRef records the carrier reference on an already persisted order.
func (s *OrderStore) SetShipmentRef(ctx context.Context, orderID uuid.UUID, ref string) error {
	const op = "postgres.order.SetShipmentRef"

	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET shipment_ref = $2 WHERE id = $1::uuid`,
		orderID.String(), ref)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to set shipment reference")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AdvancePayoutStatus performs a guarded transition on one seller group. The
// WHERE clause carries the expected current state, so concurrent or replayed
// transitions update zero rows instead of skipping or regressing states.
func (s *OrderStore) AdvancePayoutStatus(ctx context.Context, orderID uuid.UUID, sellerEmail string, from, to domain.PayoutStatus) error {
	const op = "postgres.order.AdvancePayoutStatus"

	if !from.CanAdvanceTo(to) {
		return domain.ErrPayoutTransition
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE order_seller_groups
		SET payout_status = $4
		WHERE order_id = $1::uuid AND lower(seller_email) = lower($2) AND payout_status = $3`,
		orderID.String(), sellerEmail, string(from), string(to))
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to advance payout status")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: either the group is missing or it is in another state.
	var exists bool
	err = s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_seller_groups
			WHERE order_id = $1::uuid AND lower(seller_email) = lower($2))`,
		orderID.String(), sellerEmail).Scan(&exists)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to inspect payout status")
	}
	if !exists {
		return domain.ErrOrderNotFound
	}
	return domain.ErrPayoutTransition
}

// AppendReview attaches one review to a product line, enforcing at most one
// review per reviewer per line through the unique constraint.
func (s *OrderStore) AppendReview(ctx context.Context, orderID, lineID uuid.UUID, review domain.Review) error {
	const op = "postgres.order.AppendReview"

	if err := review.Validate(); err != nil {
		return err
	}

	var lineExists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_product_lines l
			JOIN order_seller_groups g ON g.id = l.group_id
			WHERE g.order_id = $1::uuid AND l.id = $2::uuid)`,
		orderID.String(), lineID.String()).Scan(&lineExists)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to locate product line")
	}
	if !lineExists {
		var orderExists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1::uuid)`,
			orderID.String()).Scan(&orderExists)
		if err != nil {
			return domain.WrapError(err, domain.EINTERNAL, op, "failed to locate order")
		}
		if !orderExists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrProductLineNotFound
	}

	submittedAt := review.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO product_line_reviews (line_id, rating, comment, reviewer_name, submitted_at)
		VALUES ($1::uuid, $2, $3, $4, $5)`,
		lineID.String(), review.Rating, review.Comment, review.ReviewerName, submittedAt)
	if err != nil {
		if isUniqueViolation(err, "reviews_line_reviewer_unique") {
			return domain.ErrDuplicateReview
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to insert review")
	}
	return nil
}

// ListReviews aggregates reviews across all orders grouped by product
// reference.
func (s *OrderStore) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.ProductReviews, error) {
	const op = "postgres.order.ListReviews"

	query := `
		SELECT l.product_ref, l.name, r.rating, r.comment, r.reviewer_name, r.submitted_at
		FROM product_line_reviews r
		JOIN order_product_lines l ON l.id = r.line_id`
	var args []any
	var preds []string

	if filter.ProductRef != "" {
		args = append(args, filter.ProductRef)
		preds = append(preds, `l.product_ref = $1`)
	}
	if filter.ReviewerName != "" {
		args = append(args, filter.ReviewerName)
		if len(args) == 1 {
			preds = append(preds, `r.reviewer_name = $1`)
		} else {
			preds = append(preds, `r.reviewer_name = $2`)
		}
	}
	for i, p := range preds {
		if i == 0 {
			query += ` WHERE ` + p
		} else {
			query += ` AND ` + p
		}
	}
	query += ` ORDER BY l.product_ref, r.submitted_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list reviews")
	}
	defer rows.Close()

	var out []domain.ProductReviews
	index := make(map[string]int)
	for rows.Next() {
		var ref, name string
		var review domain.Review
		if err := rows.Scan(&ref, &name, &review.Rating, &review.Comment, &review.ReviewerName, &review.SubmittedAt); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan review")
		}

		i, ok := index[ref]
		if !ok {
			i = len(out)
			index[ref] = i
			out = append(out, domain.ProductReviews{ProductRef: ref, ProductName: name})
		}
		out[i].Reviews = append(out[i].Reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list reviews")
	}
	return out, nil
}

// attachGroups loads seller groups, product lines and reviews for the given
// orders in three batched queries. A non-empty sellerName narrows every order
// to that seller's groups.
func (s *OrderStore) attachGroups(ctx context.Context, orders []domain.Order, sellerName string) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]string, len(orders))
	orderIndex := make(map[string]int, len(orders))
	for i := range orders {
		id := orders[i].ID.String()
		orderIDs[i] = id
		orderIndex[id] = i
	}

	groupQuery := `
		SELECT id::text, order_id::text, seller_name, seller_email, seller_address,
		       seller_city, payout_status
		FROM order_seller_groups
		WHERE order_id = ANY($1::uuid[])`
	args := []any{orderIDs}
	if sellerName != "" {
		groupQuery += ` AND seller_name = $2`
		args = append(args, sellerName)
	}
	groupQuery += ` ORDER BY order_id, position`

	rows, err := s.pool.Query(ctx, groupQuery, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var groupIDs []string
	groupIndex := make(map[string][2]int) // group id -> order index, group index
	for rows.Next() {
		var id, orderID string
		var g domain.SellerGroup
		var status string
		if err := rows.Scan(&id, &orderID, &g.Seller.Name, &g.Seller.Email, &g.Seller.Address,
			&g.Seller.City, &status); err != nil {
			return err
		}
		g.ID, err = uuid.Parse(id)
		if err != nil {
			return err
		}
		g.PayoutStatus = domain.PayoutStatus(status)

		oi := orderIndex[orderID]
		orders[oi].SellerGroups = append(orders[oi].SellerGroups, g)
		groupIndex[id] = [2]int{oi, len(orders[oi].SellerGroups) - 1}
		groupIDs = append(groupIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(groupIDs) == 0 {
		return nil
	}

	lineRows, err := s.pool.Query(ctx, `
		SELECT id::text, group_id::text, product_ref, name, unit_price_cents,
		       quantity, grade, image_url
		FROM order_product_lines
		WHERE group_id = ANY($1::uuid[])
		ORDER BY group_id, position`,
		groupIDs)
	if err != nil {
		return err
	}
	defer lineRows.Close()

	var lineIDs []string
	lineIndex := make(map[string][3]int) // line id -> order, group, line index
	for lineRows.Next() {
		var id, groupID string
		var l domain.ProductLine
		if err := lineRows.Scan(&id, &groupID, &l.ProductRef, &l.Name, &l.UnitPriceCents,
			&l.Quantity, &l.Grade, &l.ImageURL); err != nil {
			return err
		}
		l.ID, err = uuid.Parse(id)
		if err != nil {
			return err
		}

		gi := groupIndex[groupID]
		group := &orders[gi[0]].SellerGroups[gi[1]]
		group.Lines = append(group.Lines, l)
		lineIndex[id] = [3]int{gi[0], gi[1], len(group.Lines) - 1}
		lineIDs = append(lineIDs, id)
	}
	if err := lineRows.Err(); err != nil {
		return err
	}
	if len(lineIDs) == 0 {
		return nil
	}

	reviewRows, err := s.pool.Query(ctx, `
		SELECT line_id::text, rating, comment, reviewer_name, submitted_at
		FROM product_line_reviews
		WHERE line_id = ANY($1::uuid[])
		ORDER BY line_id, submitted_at`,
		lineIDs)
	if err != nil {
		return err
	}
	defer reviewRows.Close()

	for reviewRows.Next() {
		var lineID string
		var r domain.Review
		if err := reviewRows.Scan(&lineID, &r.Rating, &r.Comment, &r.ReviewerName, &r.SubmittedAt); err != nil {
			return err
		}
		li := lineIndex[lineID]
		line := &orders[li[0]].SellerGroups[li[1]].Lines[li[2]]
		line.Reviews = append(line.Reviews, r)
	}
	return reviewRows.Err()
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var id, transportMode, paymentStatus string
	var capturedAt pgtype.Timestamptz

	err := row.Scan(&id, &o.Buyer.Name, &o.Buyer.Email, &o.Buyer.Address, &o.Buyer.City,
		&transportMode, &o.TransportCostCents, &o.TotalPriceCents,
		&o.Payment.ExternalID, &o.Payment.Method, &o.Payment.AmountCents, &paymentStatus,
		&capturedAt, &o.ShipmentRef, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	o.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	o.TransportMode = domain.TransportMode(transportMode)
	o.Payment.Status = domain.PaymentStatus(paymentStatus)
	if capturedAt.Valid {
		o.Payment.CapturedAt = capturedAt.Time
	}
	return &o, nil
}
