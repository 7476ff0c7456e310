package models

import (
	"fmt"
	"strings"
)

// NotificationType distinguishes plain messages from group invitations.
type NotificationType string

const (
	NotificationInfo   NotificationType = "INFO"
	NotificationInvite NotificationType = "INVITE"
)

// NotificationStatus is the lifecycle state of a notification.
// PENDING is the only non-terminal state.
type NotificationStatus string

const (
	StatusPending  NotificationStatus = "PENDING"
	StatusAccepted NotificationStatus = "ACCEPTED"
	StatusRejected NotificationStatus = "REJECTED"
)

// ParseResponse validates an invitation response.
func ParseResponse(s string) (NotificationStatus, error) {
	switch st := NotificationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusAccepted, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("response must be ACCEPTED or REJECTED, got %q", s)
	}
}

// Notification is an inbox item for UserID.
type Notification struct {
	ID       string
	UserID   string
	SenderID string
	Message  string
	Type     NotificationType
	Status   NotificationStatus

	// GroupID is set for invitations.
	GroupID string

	CreatedAt  int64
	ResolvedAt int64
}

// Resolved reports whether the notification reached a terminal state.
func (n *Notification) Resolved() bool {
	return n.Status != StatusPending
}
