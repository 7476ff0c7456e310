// Package models defines the domain records of the shared-expense ledger.
//
// # Records
//
//   - User: an opaque participant identity. The ledger never inspects it
//     beyond the ID; credentials belong to the transport layer.
//   - Group: a named member set with an ordered join history. It scopes every
//     ledger entry, so balances never leak across groups.
//   - Entry: one immutable ledger record, either an expense or a settlement.
//   - Split: one participant's share of an entry.
//   - Notification: an inbox item; invitations are notifications of type INVITE.
//
// # Design Principles
//
//  1. Entries are append-only. Corrections are new entries.
//  2. Relationships are ID strings, not pointers.
//  3. Amounts are money.Money, never float64.
//  4. Expense and settlement are distinguished by Kind, not by description.
package models
