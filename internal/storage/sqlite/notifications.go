package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const notificationColumns = `id, user_id, sender_id, message, type, status, group_id, created_at, resolved_at`

func scanNotification(row rowScanner) (*models.Notification, error) {
	n := &models.Notification{}
	var (
		typ, status string
		groupID     sql.NullString
		resolvedAt  sql.NullInt64
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Message, &typ, &status,
		&groupID, &n.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(typ)
	n.Status = models.NotificationStatus(status)
	if groupID.Valid {
		n.GroupID = groupID.String
	}
	if resolvedAt.Valid {
		n.ResolvedAt = resolvedAt.Int64
	}
	return n, nil
}

// CreateNotification persists a new notification.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Status == "" {
		n.Status = models.StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		n.ID, n.UserID, n.SenderID, n.Message, string(n.Type), string(n.Status),
		nullString(n.GroupID), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *SQLiteStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListPendingNotifications retrieves the user's unresolved notifications, newest first.
func (s *SQLiteStore) ListPendingNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? AND status = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID, string(models.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return out, nil
}

// HasPendingInvite reports whether userID already has an open invitation to groupID.
func (s *SQLiteStore) HasPendingInvite(ctx context.Context, groupID, userID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM notifications
		 WHERE group_id = ? AND user_id = ? AND type = ? AND status = ? LIMIT 1`,
		groupID, userID, string(models.NotificationInvite), string(models.StatusPending),
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check pending invite: %w", err)
	}
	return true, nil
}

// ResolveNotification moves a PENDING notification to a terminal status.
func (s *SQLiteStore) ResolveNotification(ctx context.Context, id string, status models.NotificationStatus, resolvedAt int64) error {
	return resolve(ctx, s.db, id, status, resolvedAt)
}

// AcceptInvite resolves the invitation and grants membership atomically.
func (s *SQLiteStore) AcceptInvite(ctx context.Context, id string, member models.Member, resolvedAt int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT group_id FROM notifications WHERE id = ?", id).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !groupID.Valid) {
		return fmt.Errorf("invitation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get invitation: %w", err)
	}

	if err := resolve(ctx, tx, id, models.StatusAccepted, resolvedAt); err != nil {
		return err
	}
	if err := insertMember(ctx, tx, groupID.String, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func resolve(ctx context.Context, db execer, id string, status models.NotificationStatus, resolvedAt int64) error {
	res, err := db.ExecContext(ctx,
		"UPDATE notifications SET status = ?, resolved_at = ? WHERE id = ? AND status = ?",
		string(status), resolvedAt, id, string(models.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("failed to resolve notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check resolved rows: %w", err)
	}
	if n == 0 {
		return storage.ErrAlreadyResolved
	}
	return nil
}
