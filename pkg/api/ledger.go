package api

import "github.com/mmynk/splitledger/internal/money"

// CreateExpenseRequest records an expense. PayerID defaults to the caller.
type CreateExpenseRequest struct {
	GroupID      string        `json:"groupId"`
	PayerID      string        `json:"payerId,omitempty"`
	Description  string        `json:"description"`
	Amount       money.Money   `json:"amount"`
	Strategy     string        `json:"strategy"`
	Participants []Participant `json:"participants"`
}

type CreateExpenseResponse struct {
	Entry Entry `json:"entry"`
}

// CreateSettlementRequest records a payment. PayerID defaults to the caller.
type CreateSettlementRequest struct {
	GroupID    string      `json:"groupId"`
	PayerID    string      `json:"payerId,omitempty"`
	ReceiverID string      `json:"receiverId"`
	Amount     money.Money `json:"amount"`
	Note       string      `json:"note,omitempty"`
}

type CreateSettlementResponse struct {
	Entry Entry `json:"entry"`
}

type GetBalancesRequest struct{}

type GetBalancesResponse struct {
	OweList  []Balance `json:"oweList"`
	OwedList []Balance `json:"owedList"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

// GetGroupBalancesResponse holds the caller's wallet within the group plus
// every member's totals.
type GetGroupBalancesResponse struct {
	OweList  []Balance       `json:"oweList"`
	OwedList []Balance       `json:"owedList"`
	Members  []MemberBalance `json:"members"`
}

type GetGroupHistoryRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupHistoryResponse struct {
	Entries []Entry `json:"entries"`
}

type GetUserHistoryRequest struct{}

type GetUserHistoryResponse struct {
	Entries []Entry `json:"entries"`
}
