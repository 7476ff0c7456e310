package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/calculator"
)

// GetBalances returns userID's wallet across all groups.
func (s *Service) GetBalances(ctx context.Context, userID string) (calculator.Balances, error) {
	if userID == "" {
		return calculator.Balances{}, apperr.Validation("user id is required")
	}
	entries, err := s.store.ListEntriesByUser(ctx, userID)
	if err != nil {
		return calculator.Balances{}, fmt.Errorf("failed to load entries: %w", err)
	}
	return calculator.CalculateBalances(userID, entries), nil
}

// GetGroupBalances returns userID's wallet restricted to one group.
func (s *Service) GetGroupBalances(ctx context.Context, groupID, userID string) (calculator.Balances, error) {
	_, entries, err := s.readableLedger(ctx, groupID, userID)
	if err != nil {
		return calculator.Balances{}, err
	}
	return calculator.CalculateBalances(userID, entries), nil
}

// GetGroupSummary returns paid, share and net per user for the group,
// including former members who still appear in its ledger.
func (s *Service) GetGroupSummary(ctx context.Context, groupID, actor string) ([]calculator.MemberBalance, error) {
	group, entries, err := s.readableLedger(ctx, groupID, actor)
	if err != nil {
		return nil, err
	}
	return calculator.SummarizeMembers(group.MemberIDs(), entries), nil
}
