package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "splitledger.v1.GroupService"

// Procedure paths of the GroupService.
const (
	GroupServiceCreateGroupProcedure       = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure        = "/splitledger.v1.GroupService/ListGroups"
	GroupServiceAddMemberProcedure         = "/splitledger.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure      = "/splitledger.v1.GroupService/RemoveMember"
	GroupServiceListNotificationsProcedure = "/splitledger.v1.GroupService/ListNotifications"
	GroupServiceRespondToInviteProcedure   = "/splitledger.v1.GroupService/RespondToInvite"
	GroupServiceSendNotificationProcedure  = "/splitledger.v1.GroupService/SendNotification"
)

// GroupServiceHandler is implemented by the server side of the GroupService.
// GroupService manages groups, membership and the notification inbox.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	RespondToInvite(context.Context, *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error)
	SendNotification(context.Context, *connect.Request[api.SendNotificationRequest]) (*connect.Response[api.SendNotificationResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler serving svc. It returns the path
// prefix to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceListNotificationsProcedure, connect.NewUnaryHandler(GroupServiceListNotificationsProcedure, svc.ListNotifications, opts...))
	mux.Handle(GroupServiceRespondToInviteProcedure, connect.NewUnaryHandler(GroupServiceRespondToInviteProcedure, svc.RespondToInvite, opts...))
	mux.Handle(GroupServiceSendNotificationProcedure, connect.NewUnaryHandler(GroupServiceSendNotificationProcedure, svc.SendNotification, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	RespondToInvite(context.Context, *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error)
	SendNotification(context.Context, *connect.Request[api.SendNotificationRequest]) (*connect.Response[api.SendNotificationResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService at baseURL
// (for example, http://localhost:8080).
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &groupServiceClient{
		createGroup:       connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:          connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:        connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMember:         connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		removeMember:      connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		listNotifications: connect.NewClient[api.ListNotificationsRequest, api.ListNotificationsResponse](httpClient, baseURL+GroupServiceListNotificationsProcedure, opts...),
		respondToInvite:   connect.NewClient[api.RespondToInviteRequest, api.RespondToInviteResponse](httpClient, baseURL+GroupServiceRespondToInviteProcedure, opts...),
		sendNotification:  connect.NewClient[api.SendNotificationRequest, api.SendNotificationResponse](httpClient, baseURL+GroupServiceSendNotificationProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup       *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup          *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups        *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember         *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	removeMember      *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	listNotifications *connect.Client[api.ListNotificationsRequest, api.ListNotificationsResponse]
	respondToInvite   *connect.Client[api.RespondToInviteRequest, api.RespondToInviteResponse]
	sendNotification  *connect.Client[api.SendNotificationRequest, api.SendNotificationResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *groupServiceClient) RespondToInvite(ctx context.Context, req *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error) {
	return c.respondToInvite.CallUnary(ctx, req)
}

func (c *groupServiceClient) SendNotification(ctx context.Context, req *connect.Request[api.SendNotificationRequest]) (*connect.Response[api.SendNotificationResponse], error) {
	return c.sendNotification.CallUnary(ctx, req)
}
