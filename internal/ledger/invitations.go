package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// RespondToInvite moves a PENDING notification to ACCEPTED or REJECTED.
// Accepting an invitation grants membership at the group's next join
// position. Only the target user may respond, and only once.
func (s *Service) RespondToInvite(ctx context.Context, notificationID, actor, response string) (*models.Notification, error) {
	status, err := models.ParseResponse(response)
	if err != nil {
		return nil, apperr.Validation("%s", err)
	}

	n, err := s.loadNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != actor {
		return nil, apperr.Authorization("only the invited user can respond")
	}

	if n.GroupID != "" {
		unlock := s.locks.lock(n.GroupID)
		defer unlock()
	}

	// Re-read under the group lock; another response may have won the race.
	n, err = s.loadNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Resolved() {
		return nil, apperr.Conflict("invitation already resolved")
	}

	now := s.timestamp()
	if n.Type == models.NotificationInvite && status == models.StatusAccepted {
		group, err := s.loadGroup(ctx, n.GroupID)
		if err != nil {
			return nil, err
		}
		member := models.Member{UserID: actor, Position: group.NextPosition(), JoinedAt: now}
		err = s.store.AcceptInvite(ctx, n.ID, member, now)
		if err != nil {
			return nil, s.resolveErr(err)
		}
		slog.Info("Invitation accepted", "group_id", n.GroupID, "user_id", actor, "position", member.Position)
	} else {
		if err := s.store.ResolveNotification(ctx, n.ID, status, now); err != nil {
			return nil, s.resolveErr(err)
		}
		slog.Info("Notification resolved", "notification_id", n.ID, "user_id", actor, "status", status)
	}

	n.Status = status
	n.ResolvedAt = now
	return n, nil
}

// ListNotifications returns userID's pending notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	list, err := s.store.ListPendingNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// SendNotification delivers an INFO message from actor to targetID.
func (s *Service) SendNotification(ctx context.Context, actor, targetID, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	n := &models.Notification{
		UserID:    targetID,
		SenderID:  actor,
		Message:   message,
		Type:      models.NotificationInfo,
		Status:    models.StatusPending,
		CreatedAt: s.timestamp(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (s *Service) loadNotification(ctx context.Context, id string) (*models.Notification, error) {
	if id == "" {
		return nil, apperr.Validation("notification id is required")
	}
	n, err := s.store.GetNotification(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("notification %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	return n, nil
}

func (s *Service) resolveErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrAlreadyResolved):
		return apperr.Conflict("invitation already resolved")
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("invitation not found")
	default:
		return fmt.Errorf("failed to resolve notification: %w", err)
	}
}
