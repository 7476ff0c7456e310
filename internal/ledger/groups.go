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

// CreateGroup creates a group owned by actor. The creator takes join position
// 0 and memberIDs follow in input order; duplicates and the creator are
// skipped.
func (s *Service) CreateGroup(ctx context.Context, actor, name string, memberIDs []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	if _, err := s.requireUser(ctx, actor); err != nil {
		return nil, err
	}

	ids := []string{actor}
	seen := map[string]bool{actor: true}
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, apperr.NotFound("user %s not found", id)
		}
	}

	now := s.timestamp()
	group := &models.Group{
		Name:      name,
		CreatorID: actor,
		CreatedAt: now,
	}
	for i, id := range ids {
		group.Members = append(group.Members, models.Member{UserID: id, Position: i, JoinedAt: now})
	}
	group.Joins = len(group.Members)

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "creator_id", actor, "members", len(group.Members))
	return group, nil
}

// GetGroup returns a group to one of its current members.
func (s *Service) GetGroup(ctx context.Context, groupID, actor string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actor) {
		return nil, apperr.Authorization("user %s is not a member of group %s", actor, groupID)
	}
	return group, nil
}

// ListGroupsForUser returns the groups userID currently belongs to, newest first.
func (s *Service) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// AddMember invites newMemberID to the group. Membership is only granted
// once the target accepts the returned invitation.
func (s *Service) AddMember(ctx context.Context, groupID, newMemberID, requestedBy string) (*models.Notification, error) {
	unlock, err := s.lockGroup(groupID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(requestedBy) {
		return nil, apperr.Authorization("only group members can invite")
	}
	if _, err := s.requireUser(ctx, newMemberID); err != nil {
		return nil, err
	}
	if group.HasMember(newMemberID) {
		return nil, apperr.Validation("user %s is already a member", newMemberID)
	}

	pending, err := s.store.HasPendingInvite(ctx, groupID, newMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitations: %w", err)
	}
	if pending {
		return nil, apperr.Conflict("user %s already has a pending invitation", newMemberID)
	}

	invite := &models.Notification{
		UserID:    newMemberID,
		SenderID:  requestedBy,
		Message:   fmt.Sprintf("%s invited you to join %s", s.displayName(ctx, requestedBy), group.Name),
		Type:      models.NotificationInvite,
		Status:    models.StatusPending,
		GroupID:   groupID,
		CreatedAt: s.timestamp(),
	}
	if err := s.store.CreateNotification(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	slog.Info("Member invited", "group_id", groupID, "user_id", newMemberID, "invited_by", requestedBy)
	return invite, nil
}

// RemoveMember removes memberID from the group. Only the admin may remove
// members, and the last member cannot be removed. Ledger history is kept, so
// balances involving the removed user stay visible.
func (s *Service) RemoveMember(ctx context.Context, groupID, memberID, requestedBy string) (*models.Group, error) {
	unlock, err := s.lockGroup(groupID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(requestedBy) {
		return nil, apperr.Authorization("only the group admin can remove members")
	}
	if !group.HasMember(memberID) {
		return nil, apperr.NotFound("user %s is not a member of group %s", memberID, groupID)
	}
	if len(group.Members) == 1 {
		return nil, apperr.Validation("cannot remove the last member of a group")
	}

	err = s.store.RemoveGroupMember(ctx, groupID, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user %s is not a member of group %s", memberID, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", memberID, "removed_by", requestedBy)
	return s.loadGroup(ctx, groupID)
}
