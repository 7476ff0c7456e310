package api

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// AddMemberRequest invites UserID; membership starts when they accept.
type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type AddMemberResponse struct {
	Invitation Notification `json:"invitation"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct {
	Group Group `json:"group"`
}

type ListNotificationsRequest struct{}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// RespondToInviteRequest answers a pending notification with ACCEPTED or REJECTED.
type RespondToInviteRequest struct {
	NotificationID string `json:"notificationId"`
	Response       string `json:"response"`
}

type RespondToInviteResponse struct {
	Notification Notification `json:"notification"`
}

type SendNotificationRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type SendNotificationResponse struct {
	Notification Notification `json:"notification"`
}
