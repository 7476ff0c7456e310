package models

// SettlementDescription is stored as the description of every settlement
// entry. It is display text only; Kind identifies settlements.
const SettlementDescription = "Settlement"

// IsSettlement reports whether the entry records a direct payment.
func (e *Entry) IsSettlement() bool {
	return e.Kind == KindSettlement
}

// ReceiverID returns the payee of a settlement, or "" for an expense.
func (e *Entry) ReceiverID() string {
	if !e.IsSettlement() || len(e.Splits) == 0 {
		return ""
	}
	return e.Splits[0].UserID
}
