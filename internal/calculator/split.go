// Package calculator holds the pure ledger arithmetic: turning an expense
// submission into splits, and replaying entries into balances.
//
// Allocation always conserves the total. Rounding leftovers ("residual") go to
// one participant chosen deterministically:
//   - EQUAL: the first included participant, in input order. Shares are
//     rounded half-up, or down when rounding up would overshoot the total by
//     more than the first share can absorb.
//   - EXACT and PERCENTAGE: the first participant whose amount is non-zero,
//     or the first participant if all amounts are zero.
package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var maxPercent = decimal.NewFromInt(100)

// Participant is one row of an expense submission.
type Participant struct {
	UserID string

	// Included selects the participant for EQUAL splits.
	Included bool

	// Value is the absolute amount (EXACT) or percent 0-100 (PERCENTAGE).
	Value decimal.Decimal
}

// Allocate divides total among participants according to strategy.
// Zero-amount splits are dropped unless they belong to payerID. The payer is
// never added implicitly.
func Allocate(total money.Money, strategy models.Strategy, payerID string, participants []Participant) ([]models.Split, error) {
	if !total.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if err := checkParticipants(participants); err != nil {
		return nil, err
	}

	var (
		splits []models.Split
		err    error
	)
	switch strategy {
	case models.StrategyEqual:
		splits, err = allocateEqual(total, participants)
	case models.StrategyExact:
		splits, err = allocateExact(total, participants)
	case models.StrategyPercentage:
		splits, err = allocatePercentage(total, participants)
	default:
		return nil, apperr.Validation("unknown split strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}

	return dropZero(splits, payerID), nil
}

func checkParticipants(participants []Participant) error {
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		id := strings.TrimSpace(p.UserID)
		if id == "" {
			return apperr.Validation("participant id required")
		}
		if seen[id] {
			return apperr.Validation("participant %s listed more than once", id)
		}
		seen[id] = true
	}
	return nil
}

func allocateEqual(total money.Money, participants []Participant) ([]models.Split, error) {
	var splits []models.Split
	for _, p := range participants {
		if p.Included {
			splits = append(splits, models.Split{UserID: p.UserID})
		}
	}
	n := int64(len(splits))
	if n == 0 {
		return nil, apperr.Validation("no participants selected")
	}

	share := total.Div(n).Round()
	residual := total.Sub(share.MulInt(n))
	if share.Add(residual).IsNegative() {
		// Rounding up overshot by more than one share. Round down so the
		// residual is never negative.
		share = total.Div(n).Truncate()
		residual = total.Sub(share.MulInt(n))
	}
	for i := range splits {
		splits[i].Amount = share
	}
	splits[0].Amount = splits[0].Amount.Add(residual)
	return splits, nil
}

func allocateExact(total money.Money, participants []Participant) ([]models.Split, error) {
	splits := make([]models.Split, 0, len(participants))
	for _, p := range participants {
		amount := money.FromDecimal(p.Value)
		if amount.IsNegative() {
			return nil, apperr.Validation("amount for %s must not be negative", p.UserID)
		}
		if !amount.IsRounded() {
			return nil, apperr.Validation("amount for %s must have at most two decimal places", p.UserID)
		}
		splits = append(splits, models.Split{UserID: p.UserID, Amount: amount})
	}
	if err := absorbResidual(total, splits, tolerance(len(participants))); err != nil {
		return nil, err
	}
	return splits, nil
}

func allocatePercentage(total money.Money, participants []Participant) ([]models.Split, error) {
	splits := make([]models.Split, 0, len(participants))
	pctSum := decimal.Zero
	for _, p := range participants {
		if p.Value.IsNegative() || p.Value.GreaterThan(maxPercent) {
			return nil, apperr.Validation("percentage for %s must be between 0 and 100", p.UserID)
		}
		pctSum = pctSum.Add(p.Value)
		splits = append(splits, models.Split{UserID: p.UserID, Amount: total.Percent(p.Value).Round()})
	}

	tol := tolerance(len(participants))
	if pctSum.GreaterThan(maxPercent.Add(tol.Decimal())) {
		return nil, apperr.Validation("percentages sum to %s, must not exceed 100", pctSum.String())
	}
	if err := absorbResidual(total, splits, tol); err != nil {
		return nil, err
	}
	return splits, nil
}

// tolerance is the allowed gap between declared splits and the total:
// one cent per participant row.
func tolerance(rows int) money.Money {
	return money.Cent.MulInt(int64(rows))
}

// absorbResidual checks that splits sum to total within tol and moves the
// difference onto one participant so the sum becomes exact.
func absorbResidual(total money.Money, splits []models.Split, tol money.Money) error {
	sum := money.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	diff := total.Sub(sum)
	if diff.Abs().GreaterThan(tol) || len(splits) == 0 {
		return apperr.Validation("split amounts sum to %s, expected %s", sum, total)
	}
	if diff.IsZero() {
		return nil
	}

	target := 0
	for i, s := range splits {
		if !s.Amount.IsZero() {
			target = i
			break
		}
	}
	splits[target].Amount = splits[target].Amount.Add(diff)
	if splits[target].Amount.IsNegative() {
		return apperr.Validation("split amounts sum to %s, expected %s", sum, total)
	}
	return nil
}

func dropZero(splits []models.Split, payerID string) []models.Split {
	kept := splits[:0]
	for _, s := range splits {
		if s.Amount.IsZero() && s.UserID != payerID {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
