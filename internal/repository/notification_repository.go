package repository

import (
	"context"
	"database/sql"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

const notificationCols = "id, user_id, type, title, message, related_id, is_read, created_at"

// NotificationRepo stores rendered in-app notifications.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func scanNotification(s scanner) (model.Notification, error) {
	var (
		n   model.Notification
		rel sql.NullInt64
	)
	err := s.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &rel, &n.IsRead, &n.CreatedAt)
	if rel.Valid {
		v := uint64(rel.Int64)
		n.RelatedID = &v
	}
	return n, err
}

// Create inserts n and sets its id.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, title, message, related_id) VALUES (?,?,?,?,?)",
		n.UserID, n.Type, n.Title, n.Message, n.RelatedID)
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

// ListByUser returns a page of a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error) {
	where := "user_id = ?"
	if unreadOnly {
		where += " AND is_read = FALSE"
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE "+where, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page, pageSize)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE "+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// MarkRead marks one of the user's notifications as read.  Another user's
// notification is reported as not found.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx,
		"SELECT 1 FROM notifications WHERE id = ? AND user_id = ?", id, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotificationNotFound
	}
	return err // already read
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnread returns the badge count for a user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE", userID).Scan(&n)
	return n, err
}
