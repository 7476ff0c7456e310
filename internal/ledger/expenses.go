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

// ExpenseInput is a request to record an expense.
type ExpenseInput struct {
	GroupID      string
	PayerID      string
	Description  string
	Amount       money.Money
	Strategy     models.Strategy
	Participants []calculator.Participant
}

// CreateExpense allocates the expense across its participants and appends it
// to the group's ledger. Actor, payer and every participant must be current
// members of the group.
func (s *Service) CreateExpense(ctx context.Context, in ExpenseInput, actor string) (*models.Entry, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if !in.Amount.IsRounded() {
		return nil, apperr.Validation("amount must have at most two decimal places")
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
	if !group.HasMember(actor) {
		return nil, apperr.Authorization("user %s is not a member of group %s", actor, in.GroupID)
	}
	if !group.HasMember(in.PayerID) {
		return nil, apperr.Validation("payer %s is not a member of the group", in.PayerID)
	}
	for _, p := range in.Participants {
		if p.UserID != "" && !group.HasMember(p.UserID) {
			return nil, apperr.Validation("participant %s is not a member of the group", p.UserID)
		}
	}

	splits, err := calculator.Allocate(in.Amount, in.Strategy, in.PayerID, in.Participants)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		Kind:        models.KindExpense,
		GroupID:     in.GroupID,
		PayerID:     in.PayerID,
		Description: description,
		Amount:      in.Amount,
		Strategy:    in.Strategy,
		Splits:      splits,
		CreatedBy:   actor,
		CreatedAt:   s.timestamp(),
	}
	if err := s.store.AppendEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append expense: %w", err)
	}
	s.recorder.EntryAppended(entry.Kind)

	slog.Info("Expense recorded",
		"entry_id", entry.ID,
		"group_id", entry.GroupID,
		"payer_id", entry.PayerID,
		"amount", entry.Amount.String(),
		"splits", len(entry.Splits),
	)

	payer := s.displayName(ctx, entry.PayerID)
	for _, split := range entry.Splits {
		if split.UserID == entry.PayerID {
			continue
		}
		s.notify(ctx, split.UserID, actor, fmt.Sprintf(
			"%s added %q in %s: your share is %s", payer, description, group.Name, split.Amount))
	}
	return entry, nil
}

// notify sends an INFO notification. Failures are logged and otherwise
// ignored; the ledger entry that triggered it is already committed.
func (s *Service) notify(ctx context.Context, userID, senderID, message string) {
	n := &models.Notification{
		UserID:    userID,
		SenderID:  senderID,
		Message:   message,
		Type:      models.NotificationInfo,
		Status:    models.StatusPending,
		CreatedAt: s.timestamp(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		slog.Warn("Failed to send notification", "user_id", userID, "error", err)
	}
}
