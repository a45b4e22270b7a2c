// Package notification stores per-user messages and turns booking
// decisions into them.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombooking/internal/fault"
)

const (
	TypeInfo            = "INFO"
	TypeBookingApproved = "BOOKING_APPROVED"
	TypeBookingRejected = "BOOKING_REJECTED"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const notificationColumns = `id, user_id, title, message, type, is_read, created_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "notification not found")
		}
		return nil, err
	}
	return &n, nil
}

func (r *Repository) Insert(ctx context.Context, n *Notification) error {
	const q = `
INSERT INTO notifications (id, user_id, title, message, type)
VALUES ($1, $2, $3, $4, $5)
RETURNING is_read, created_at
`
	return r.db.QueryRow(ctx, q, n.ID, n.UserID, n.Title, n.Message, n.Type).Scan(&n.IsRead, &n.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	const q = `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(r.db.QueryRow(ctx, q, id))
}

// ListForUser returns the user's notifications newest first; isRead nil
// means both read and unread.
func (r *Repository) ListForUser(ctx context.Context, userID string, isRead *bool) ([]Notification, error) {
	const q = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE user_id = $1 AND ($2::BOOLEAN IS NULL OR is_read = $2)
ORDER BY created_at DESC
LIMIT 100
`
	rows, err := r.db.Query(ctx, q, userID, isRead)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID,
	).Scan(&count)
	return count, err
}

// MarkRead flips one of the user's notifications to read. Scoping by
// user keeps one user from touching another's inbox.
func (r *Repository) MarkRead(ctx context.Context, id, userID string) (*Notification, error) {
	const q = `
UPDATE notifications SET is_read = TRUE
WHERE id = $1 AND user_id = $2
RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRow(ctx, q, id, userID))
}

func (r *Repository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "notification not found")
	}
	return nil
}
