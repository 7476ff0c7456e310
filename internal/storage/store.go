// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is wrapped by lookups of absent groups, entries and notifications.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyResolved is returned when a notification is no longer PENDING.
	ErrAlreadyResolved = errors.New("notification already resolved")
)

// Store defines the persistence operations of the ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Ledger entries are append-only: there is no update or delete for them.
type Store interface {
	UserStore
	GroupStore
	EntryStore
	NotificationStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return nil, nil when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs omits ids that do not exist.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// SearchUsers matches query against username and email prefixes.
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup stores the group and its initial members atomically.
	CreateGroup(ctx context.Context, group *models.Group) error

	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
}

// EntryStore is the append-only ledger.
type EntryStore interface {
	// AppendEntry stores the entry and all of its splits, or nothing.
	AppendEntry(ctx context.Context, entry *models.Entry) error

	// ListEntriesByGroup returns the group's ledger in append order.
	ListEntriesByGroup(ctx context.Context, groupID string) ([]models.Entry, error)

	// ListEntriesByUser returns entries across groups where the user paid or
	// holds a split, in append order.
	ListEntriesByUser(ctx context.Context, userID string) ([]models.Entry, error)
}

// NotificationStore persists inbox items and invitations.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)

	// ListPendingNotifications returns the user's PENDING items, newest first.
	ListPendingNotifications(ctx context.Context, userID string) ([]*models.Notification, error)

	HasPendingInvite(ctx context.Context, groupID, userID string) (bool, error)

	// ResolveNotification moves a PENDING notification to status.
	// It returns ErrAlreadyResolved if it was not PENDING.
	ResolveNotification(ctx context.Context, id string, status models.NotificationStatus, resolvedAt int64) error

	// AcceptInvite resolves the invitation as ACCEPTED and adds member to its
	// group in one transaction.
	AcceptInvite(ctx context.Context, id string, member models.Member, resolvedAt int64) error
}
