package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qmotor/car-marketplace/internal/model"
)

// ErrNotificationNotFound is returned when a notification row does not
// exist or belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepo writes the best-effort notification rows produced
// by moderation decisions and serves them back to their owner.
// Moderation callers swallow insert failures.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Insert stores one notification row.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (user_id, type, title, message) VALUES (?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q, n.UserID, n.Type, n.Title, n.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns a user's notifications newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error) {
	const q = `SELECT id, user_id, type, title, message, is_read, created_at
	           FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		n := new(model.Notification)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one of the user's notifications as read. Marking an
// already-read row again is a no-op, not an error; rows of other users
// are reported as missing. The ownership check is a separate read
// because MySQL reports zero affected rows for a no-change update.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	var owner uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id FROM notifications WHERE id = ?`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotificationNotFound
		}
		return err
	}
	if owner != userID {
		return ErrNotificationNotFound
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ?`, id)
	return err
}
