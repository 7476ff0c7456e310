package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SettlementInput is a request to record a direct payment from PayerID to
// ReceiverID.
type SettlementInput struct {
	GroupID    string
	PayerID    string
	ReceiverID string
	Amount     money.Money
	// Note is optional text forwarded to the receiver.
	Note string
}

// CreateSettlement records a payment that reduces what PayerID owes
// ReceiverID in the group. The amount may not exceed the payer's current net
// debt to the receiver; it is rejected, never clamped.
//
// Payer and receiver need not be current members, so a removed member can
// still settle up. The actor must be the payer or a current member.
func (s *Service) CreateSettlement(ctx context.Context, in SettlementInput, actor string) (*models.Entry, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if !in.Amount.IsRounded() {
		return nil, apperr.Validation("amount must have at most two decimal places")
	}
	if in.PayerID == "" || in.ReceiverID == "" {
		return nil, apperr.Validation("payer and receiver are required")
	}
	if in.PayerID == in.ReceiverID {
		return nil, apperr.Validation("payer and receiver must differ")
	}

	unlock, err := s.lockGroup(in.GroupID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	group, err := s.loadGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if actor != in.PayerID && !group.HasMember(actor) {
		return nil, apperr.Authorization("user %s cannot record settlements in group %s", actor, in.GroupID)
	}

	entries, err := s.store.ListEntriesByGroup(ctx, in.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	owed := calculator.NetDebt(in.PayerID, in.ReceiverID, entries)
	if in.Amount.GreaterThan(owed) {
		s.recorder.SettlementRejected("exceeds_owed")
		slog.Warn("Settlement rejected",
			"group_id", in.GroupID,
			"payer_id", in.PayerID,
			"receiver_id", in.ReceiverID,
			"amount", in.Amount.String(),
			"owed", owed.String(),
		)
		return nil, apperr.Validation("amount exceeds owed balance")
	}

	entry := &models.Entry{
		Kind:        models.KindSettlement,
		GroupID:     in.GroupID,
		PayerID:     in.PayerID,
		Description: models.SettlementDescription,
		Amount:      in.Amount,
		Splits:      []models.Split{{UserID: in.ReceiverID, Amount: in.Amount}},
		CreatedBy:   actor,
		CreatedAt:   s.timestamp(),
	}
	if err := s.store.AppendEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append settlement: %w", err)
	}
	s.recorder.EntryAppended(entry.Kind)

	slog.Info("Settlement recorded",
		"entry_id", entry.ID,
		"group_id", entry.GroupID,
		"payer_id", entry.PayerID,
		"receiver_id", in.ReceiverID,
		"amount", entry.Amount.String(),
	)

	message := fmt.Sprintf("%s paid you %s in %s", s.displayName(ctx, in.PayerID), in.Amount, group.Name)
	if note := strings.TrimSpace(in.Note); note != "" {
		message += ": " + note
	}
	s.notify(ctx, in.ReceiverID, actor, message)
	return entry, nil
}
