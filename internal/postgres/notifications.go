package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahanr/harvestlink/internal/domain"
)

// NotificationStore implements domain.NotificationStore using PostgreSQL.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that NotificationStore implements domain.NotificationStore.
var _ domain.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore creates a PostgreSQL-backed notification store.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Upsert creates the (recipient, product) notification if absent. The unique
// pair constraint turns replays into no-ops, so re-approving a product never
// duplicates alerts.
func (s *NotificationStore) Upsert(ctx context.Context, n *domain.Notification) error {
	const op = "postgres.notification.Upsert"

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, product_id, message, read, created_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT notifications_recipient_product_unique DO NOTHING`,
		n.ID.String(), n.RecipientID.String(), n.ProductID.String(), n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to upsert notification")
	}
	return nil
}

// ListForRecipient returns a recipient's notifications, newest first.
func (s *NotificationStore) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Notification, error) {
	const op = "postgres.notification.List"

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, recipient_id::text, product_id::text, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1::uuid
		ORDER BY created_at DESC`,
		recipientID.String())
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list notifications")
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan notification")
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list notifications")
	}
	return out, nil
}

// MarkRead flips the read flag to true and returns the updated record.
func (s *NotificationStore) MarkRead(ctx context.Context, notificationID uuid.UUID) (*domain.Notification, error) {
	const op = "postgres.notification.MarkRead"

	row := s.pool.QueryRow(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1::uuid
		RETURNING id::text, recipient_id::text, product_id::text, message, read, created_at`,
		notificationID.String())

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to mark notification read")
	}
	return n, nil
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var id, recipientID, productID string

	err := row.Scan(&id, &recipientID, &productID, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	if n.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if n.RecipientID, err = uuid.Parse(recipientID); err != nil {
		return nil, err
	}
	if n.ProductID, err = uuid.Parse(productID); err != nil {
		return nil, err
	}
	return &n, nil
}

// RecipientStore implements domain.RecipientDirectory using PostgreSQL.
// Grade preferences are stored as a JSONB object of grade -> bool.
type RecipientStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that RecipientStore implements domain.RecipientDirectory.
var _ domain.RecipientDirectory = (*RecipientStore)(nil)

// NewRecipientStore creates a PostgreSQL-backed recipient directory.
func NewRecipientStore(pool *pgxpool.Pool) *RecipientStore {
	return &RecipientStore{pool: pool}
}

// ListByGradePreference returns recipients who opted into the given grade.
func (s *RecipientStore) ListByGradePreference(ctx context.Context, grade string) ([]domain.Recipient, error) {
	const op = "postgres.recipient.ListByGradePreference"

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, name, email, grade_prefs
		FROM recipients
		WHERE grade_prefs @> jsonb_build_object($1::text, true)
		ORDER BY name`,
		grade)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list recipients")
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var r domain.Recipient
		var id string
		var prefs []byte
		if err := rows.Scan(&id, &r.Name, &r.Email, &prefs); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan recipient")
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to parse recipient id")
		}
		if len(prefs) > 0 {
			if err := json.Unmarshal(prefs, &r.GradePrefs); err != nil {
				return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to decode grade preferences")
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to list recipients")
	}
	return out, nil
}
