package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// CounterpartBalance is an absolute amount owed between the viewing user and
// one counterpart.
type CounterpartBalance struct {
	CounterpartID string
	Amount        money.Money
}

// Balances is a user's wallet view. The two lists are disjoint; a settled-up
// counterpart appears in neither.
type Balances struct {
	// OweList holds counterparts the user owes.
	OweList []CounterpartBalance
	// OwedList holds counterparts who owe the user.
	OwedList []CounterpartBalance
}

// MemberBalance summarizes one user's position within a set of entries.
type MemberBalance struct {
	UserID string
	Paid   money.Money // Expense totals this user paid
	Share  money.Money // This user's own splits across expenses
	Net    money.Money // Positive = owed money, negative = owes money
}

type pairKey struct {
	group       string
	counterpart string
}

// pairTotals accumulates one (group, counterpart) relationship from the
// viewing user's side.
type pairTotals struct {
	owe      money.Money // expense shares the user owes the counterpart
	owed     money.Money // expense shares the counterpart owes the user
	paid     money.Money // settlements user -> counterpart
	received money.Money // settlements counterpart -> user
}

// Nets replays entries for userID and returns the signed net balance per
// counterpart: positive means the counterpart owes the user.
//
// Within each group the directions are summed first and floored at zero
// afterwards, so the result depends only on the set of entries and not on
// their order. Group results are then added together.
func Nets(userID string, entries []models.Entry) map[string]money.Money {
	pairs := make(map[pairKey]*pairTotals)
	pair := func(group, counterpart string) *pairTotals {
		k := pairKey{group: group, counterpart: counterpart}
		p, ok := pairs[k]
		if !ok {
			p = &pairTotals{}
			pairs[k] = p
		}
		return p
	}

	for i := range entries {
		e := &entries[i]
		switch e.Kind {
		case models.KindExpense:
			if e.PayerID == userID {
				for _, s := range e.Splits {
					if s.UserID == userID {
						continue
					}
					p := pair(e.GroupID, s.UserID)
					p.owed = p.owed.Add(s.Amount)
				}
				continue
			}
			if share := e.SplitFor(userID); !share.IsZero() {
				p := pair(e.GroupID, e.PayerID)
				p.owe = p.owe.Add(share)
			}
		case models.KindSettlement:
			receiver := e.ReceiverID()
			if receiver == "" || receiver == e.PayerID {
				continue
			}
			switch userID {
			case e.PayerID:
				p := pair(e.GroupID, receiver)
				p.paid = p.paid.Add(e.Amount)
			case receiver:
				p := pair(e.GroupID, e.PayerID)
				p.received = p.received.Add(e.Amount)
			}
		}
	}

	nets := make(map[string]money.Money)
	for k, p := range pairs {
		youOwe := money.Max(money.Zero, p.owe.Sub(p.paid))
		owedToYou := money.Max(money.Zero, p.owed.Sub(p.received))
		nets[k.counterpart] = nets[k.counterpart].Add(owedToYou.Sub(youOwe))
	}
	return nets
}

// CalculateBalances builds the wallet view for userID from entries.
// Both lists are sorted by counterpart id.
func CalculateBalances(userID string, entries []models.Entry) Balances {
	nets := Nets(userID, entries)

	counterparts := make([]string, 0, len(nets))
	for id := range nets {
		counterparts = append(counterparts, id)
	}
	sort.Strings(counterparts)

	var b Balances
	for _, id := range counterparts {
		net := nets[id]
		switch {
		case net.IsNegative():
			b.OweList = append(b.OweList, CounterpartBalance{CounterpartID: id, Amount: net.Abs()})
		case net.IsPositive():
			b.OwedList = append(b.OwedList, CounterpartBalance{CounterpartID: id, Amount: net})
		}
	}
	return b
}

// NetDebt returns how much payer currently owes receiver according to
// entries, or zero if payer owes nothing.
func NetDebt(payerID, receiverID string, entries []models.Entry) money.Money {
	net := Nets(payerID, entries)[receiverID]
	if net.IsNegative() {
		return net.Abs()
	}
	return money.Zero
}

// SummarizeMembers computes a MemberBalance for every user that appears in
// entries or in members, sorted by user id.
func SummarizeMembers(members []string, entries []models.Entry) []MemberBalance {
	byUser := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		mb, ok := byUser[id]
		if !ok {
			mb = &MemberBalance{UserID: id}
			byUser[id] = mb
		}
		return mb
	}

	for _, id := range members {
		get(id)
	}
	for i := range entries {
		e := &entries[i]
		get(e.PayerID)
		for _, s := range e.Splits {
			get(s.UserID)
		}
		if e.Kind != models.KindExpense {
			continue
		}
		payer := get(e.PayerID)
		payer.Paid = payer.Paid.Add(e.Amount)
		for _, s := range e.Splits {
			mb := get(s.UserID)
			mb.Share = mb.Share.Add(s.Amount)
		}
	}

	out := make([]MemberBalance, 0, len(byUser))
	for id, mb := range byUser {
		for _, net := range Nets(id, entries) {
			mb.Net = mb.Net.Add(net)
		}
		out = append(out, *mb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
