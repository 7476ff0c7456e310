// Package api defines the request and response messages of the splitledger
// RPC services. Messages travel as JSON; money amounts are decimal strings.
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

// User is the public view of an account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

// Member is one current member of a group.
type Member struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Position int    `json:"position"`
	JoinedAt int64  `json:"joinedAt"`
}

// Group is a group with its current membership in join order.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatorID string   `json:"creatorId"`
	AdminID   string   `json:"adminId"`
	Members   []Member `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

// Split is one participant's share of an entry.
type Split struct {
	UserID string      `json:"userId"`
	Amount money.Money `json:"amount"`
}

// Entry is a ledger record. Kind is EXPENSE or SETTLEMENT; Strategy is empty
// for settlements, whose single split names the receiver.
type Entry struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	GroupID     string      `json:"groupId"`
	PayerID     string      `json:"payerId"`
	Description string      `json:"description"`
	Amount      money.Money `json:"amount"`
	Strategy    string      `json:"strategy,omitempty"`
	Splits      []Split     `json:"splits"`
	CreatedBy   string      `json:"createdBy"`
	CreatedAt   int64       `json:"createdAt"`
}

// Participant is one row of an expense submission. Included selects EQUAL
// participants; Value is the amount (EXACT) or percent (PERCENTAGE).
type Participant struct {
	UserID   string  `json:"userId"`
	Included bool    `json:"included,omitempty"`
	Value    Decimal `json:"value"`
}

// Decimal is an exact decimal number carried as a JSON string.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps d.
func NewDecimal(d decimal.Decimal) Decimal { return Decimal{Decimal: d} }

// UnmarshalJSON accepts a quoted decimal string or null.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("api: value must be a decimal string, got %s", data)
	}
	return d.Decimal.UnmarshalJSON(data)
}

// Balance is an absolute amount between the caller and one counterpart.
type Balance struct {
	CounterpartID string      `json:"counterpartId"`
	Amount        money.Money `json:"amount"`
}

// MemberBalance is one user's position within a group.
type MemberBalance struct {
	UserID string      `json:"userId"`
	Paid   money.Money `json:"paid"`
	Share  money.Money `json:"share"`
	Net    money.Money `json:"net"`
}

// Notification is an inbox item. GroupID is set for invitations.
type Notification struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	SenderID   string `json:"senderId"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	GroupID    string `json:"groupId,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	ResolvedAt int64  `json:"resolvedAt,omitempty"`
}
