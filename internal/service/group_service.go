package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	ledger *ledger.Service
	users  storage.UserStore
}

// NewGroupService creates a GroupService. users is only used to attach
// usernames to group members.
func NewGroupService(ledger *ledger.Service, users storage.UserStore) *GroupService {
	return &GroupService{ledger: ledger, users: users}
}

// memberNames loads the users of every member of groups. A lookup failure
// only costs the usernames.
func (s *GroupService) memberNames(ctx context.Context, groups ...*models.Group) map[string]*models.User {
	var ids []string
	for _, g := range groups {
		ids = append(ids, g.MemberIDs()...)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Failed to load member names", "error", err)
		return nil
	}
	return users
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
		"user_id", userID,
	)

	group, err := s.ledger.CreateGroup(ctx, userID, req.Msg.Name, req.Msg.MemberIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, s.memberNames(ctx, group))}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.GetGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group, s.memberNames(ctx, group))}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	names := s.memberNames(ctx, groups...)
	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, names)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember invites a user to the group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	invite, err := s.ledger.AddMember(ctx, req.Msg.GroupID, req.Msg.UserID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Invitation: toAPINotification(invite)}), nil
}

// RemoveMember removes a member; only the group admin may call it.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(group, s.memberNames(ctx, group))}), nil
}

// ListNotifications returns the caller's pending inbox.
func (s *GroupService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.ledger.ListNotifications(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]api.Notification, len(list))
	for i, n := range list {
		out[i] = toAPINotification(n)
	}
	return connect.NewResponse(&api.ListNotificationsResponse{Notifications: out}), nil
}

// RespondToInvite accepts or rejects one of the caller's notifications.
func (s *GroupService) RespondToInvite(ctx context.Context, req *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.ledger.RespondToInvite(ctx, req.Msg.NotificationID, userID, req.Msg.Response)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RespondToInviteResponse{Notification: toAPINotification(n)}), nil
}

// SendNotification sends an INFO message to another user.
func (s *GroupService) SendNotification(ctx context.Context, req *connect.Request[api.SendNotificationRequest]) (*connect.Response[api.SendNotificationResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.ledger.SendNotification(ctx, userID, req.Msg.UserID, req.Msg.Message)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SendNotificationResponse{Notification: toAPINotification(n)}), nil
}
