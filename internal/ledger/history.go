package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
)

// GetGroupHistory returns the group's ledger in creation order. Current
// members may read it, and so may former participants who appear in it.
func (s *Service) GetGroupHistory(ctx context.Context, groupID, actor string) ([]models.Entry, error) {
	_, entries, err := s.readableLedger(ctx, groupID, actor)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetUserHistory returns every entry, across groups, that userID paid or
// holds a split in.
func (s *Service) GetUserHistory(ctx context.Context, userID string) ([]models.Entry, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	entries, err := s.store.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// readableLedger loads a group and its entries, checking that actor may see them.
func (s *Service) readableLedger(ctx context.Context, groupID, actor string) (*models.Group, []models.Entry, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.store.ListEntriesByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if group.HasMember(actor) {
		return group, entries, nil
	}
	for i := range entries {
		if entries[i].Involves(actor) {
			return group, entries, nil
		}
	}
	return nil, nil, apperr.Authorization("user %s cannot read group %s", actor, groupID)
}
