package models

import (
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/money"
)

// EntryKind discriminates the two ledger record variants.
type EntryKind string

const (
	KindExpense    EntryKind = "EXPENSE"
	KindSettlement EntryKind = "SETTLEMENT"
)

// Strategy is how an expense total is divided among participants.
type Strategy string

const (
	StrategyEqual      Strategy = "EQUAL"
	StrategyExact      Strategy = "EXACT"
	StrategyPercentage Strategy = "PERCENTAGE"
)

// ParseStrategy normalizes a strategy label.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToUpper(strings.TrimSpace(s))); st {
	case StrategyEqual, StrategyExact, StrategyPercentage:
		return st, nil
	default:
		return "", fmt.Errorf("unknown split strategy %q", s)
	}
}

// Split is one participant's share of an entry.
type Split struct {
	UserID string
	Amount money.Money
}

// Entry is one immutable ledger record.
//
// For an expense, PayerID paid Amount and each split's user owes their share
// to the payer; a split for the payer themselves is "paid for self".
// For a settlement, PayerID paid Amount directly to the single split's user.
type Entry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// Kind selects expense or settlement semantics.
	Kind EntryKind

	// GroupID is the group whose ledger holds this entry.
	GroupID string

	// PayerID is who paid.
	PayerID string

	// Description is the user-supplied label, or SettlementDescription.
	Description string

	// Amount is the total paid. Always positive.
	Amount money.Money

	// Strategy is the split strategy of an expense; empty for settlements.
	Strategy Strategy

	// Splits sum exactly to Amount.
	Splits []Split

	// CreatedBy is the acting user who recorded the entry.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the entry was appended.
	CreatedAt int64
}

// Involves reports whether userID paid or holds a split in the entry.
func (e *Entry) Involves(userID string) bool {
	if e.PayerID == userID {
		return true
	}
	for _, s := range e.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// SplitFor returns userID's share, or zero when they have none.
func (e *Entry) SplitFor(userID string) money.Money {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s.Amount
		}
	}
	return money.Zero
}
