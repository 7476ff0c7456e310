// Package ledger is the shared-expense core: group membership, the
// append-only ledger of expenses and settlements, balance queries and the
// invitation lifecycle.
//
// Every operation takes the acting user as an explicit argument. Mutations of
// a group run inside that group's critical section so validation and append
// cannot interleave with another writer of the same group.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Recorder receives ledger events for instrumentation.
type Recorder interface {
	EntryAppended(kind models.EntryKind)
	SettlementRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) EntryAppended(models.EntryKind) {}
func (nopRecorder) SettlementRejected(string) {}

// Service implements the ledger operations on top of a storage.Store.
type Service struct {
	store    storage.Store
	locks    *groupLocks
	now      func() time.Time
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder installs an instrumentation recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates a Service backed by store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		locks:    newGroupLocks(),
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() int64 {
	return s.now().Unix()
}

// lockGroup takes the write lock for groupID once the id is known to be
// well formed.
func (s *Service) lockGroup(groupID string) (func(), error) {
	if groupID == "" {
		return nil, apperr.Validation("group id is required")
	}
	return s.locks.lock(groupID), nil
}

// loadGroup fetches a group, translating a storage miss into a NotFound error.
func (s *Service) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, apperr.Validation("group id is required")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("group %s not found", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return group, nil
}

// requireUser checks that userID names a registered user.
func (s *Service) requireUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return user, nil
}

// displayName returns the username of userID, falling back to the id.
func (s *Service) displayName(ctx context.Context, userID string) string {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil || user == nil || user.Username == "" {
		return userID
	}
	return user.Username
}
