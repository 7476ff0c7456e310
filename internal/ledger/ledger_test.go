package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type countingRecorder struct {
	appended atomic.Int64
	rejected atomic.Int64
}

func (r *countingRecorder) EntryAppended(models.EntryKind) { r.appended.Add(1) }
func (r *countingRecorder) SettlementRejected(string) { r.rejected.Add(1) }

func newTestService(t *testing.T) (*Service, *sqlite.SQLiteStore, *countingRecorder) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		require.NoError(t, store.CreateUser(ctx, &models.User{
			ID:        name,
			Username:  name,
			Email:     name + "@example.com",
			CreatedAt: int64(i),
		}))
	}

	clock := time.Unix(1_700_000_000, 0)
	rec := &countingRecorder{}
	svc := New(store, WithRecorder(rec), WithClock(func() time.Time { return clock }))
	return svc, store, rec
}

func equalAmong(ids ...string) []calculator.Participant {
	ps := make([]calculator.Participant, len(ids))
	for i, id := range ids {
		ps[i] = calculator.Participant{UserID: id, Included: true}
	}
	return ps
}

func mustExpense(t *testing.T, svc *Service, groupID, payer, amount string, ids ...string) *models.Entry {
	t.Helper()
	entry, err := svc.CreateExpense(context.Background(), ExpenseInput{
		GroupID:      groupID,
		PayerID:      payer,
		Description:  "Dinner",
		Amount:       money.MustParse(amount),
		Strategy:     models.StrategyEqual,
		Participants: equalAmong(ids...),
	}, payer)
	require.NoError(t, err)
	return entry
}

func TestCreateGroup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "  Trip  ", []string{"bob", "alice", "bob", "carol"})
	require.NoError(t, err)
	assert.Equal(t, "Trip", group.Name)
	assert.Equal(t, []string{"alice", "bob", "carol"}, group.MemberIDs())
	assert.Equal(t, "alice", group.Admin())

	_, err = svc.CreateGroup(ctx, "alice", " ", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateGroup(ctx, "alice", "Trip", []string{"mallory"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.GetGroup(ctx, group.ID, "dave")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = svc.GetGroup(ctx, "missing", "alice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	groups, err := svc.ListGroupsForUser(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)
}

func TestInvitationLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Flat", []string{"bob"})
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, group.ID, "carol", "dave")
	assert.ErrorIs(t, err, apperr.ErrAuthorization, "non-members cannot invite")

	_, err = svc.AddMember(ctx, group.ID, "bob", "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation, "existing member")

	_, err = svc.AddMember(ctx, group.ID, "mallory", "alice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	invite, err := svc.AddMember(ctx, group.ID, "carol", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationInvite, invite.Type)
	assert.Equal(t, models.StatusPending, invite.Status)
	assert.Equal(t, "bob invited you to join Flat", invite.Message)

	_, err = svc.AddMember(ctx, group.ID, "carol", "alice")
	assert.ErrorIs(t, err, apperr.ErrConflict, "second pending invite")

	inbox, err := svc.ListNotifications(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	_, err = svc.RespondToInvite(ctx, invite.ID, "carol", "MAYBE")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.RespondToInvite(ctx, invite.ID, "bob", "ACCEPTED")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	resolved, err := svc.RespondToInvite(ctx, invite.ID, "carol", "accepted")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, resolved.Status)

	_, err = svc.RespondToInvite(ctx, invite.ID, "carol", "REJECTED")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "invitation already resolved", err.Error())

	group, err = svc.GetGroup(ctx, group.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, group.MemberIDs())
	assert.Equal(t, 2, group.Members[2].Position)

	inbox, err = svc.ListNotifications(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestRejectedInviteGrantsNothing(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Flat", nil)
	require.NoError(t, err)
	invite, err := svc.AddMember(ctx, group.ID, "dave", "alice")
	require.NoError(t, err)

	_, err = svc.RespondToInvite(ctx, invite.ID, "dave", "REJECTED")
	require.NoError(t, err)

	group, err = svc.GetGroup(ctx, group.ID, "alice")
	require.NoError(t, err)
	assert.False(t, group.HasMember("dave"))

	// A rejected invitation no longer blocks a fresh one.
	_, err = svc.AddMember(ctx, group.ID, "dave", "alice")
	assert.NoError(t, err)
}

func TestRemoveMemberAdminFallback(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Flat", []string{"bob", "carol"})
	require.NoError(t, err)

	_, err = svc.RemoveMember(ctx, group.ID, "carol", "bob")
	assert.ErrorIs(t, err, apperr.ErrAuthorization, "bob is not admin yet")

	group, err = svc.RemoveMember(ctx, group.ID, "alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", group.Admin())

	_, err = svc.RemoveMember(ctx, group.ID, "dave", "bob")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	group, err = svc.RemoveMember(ctx, group.ID, "carol", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, group.MemberIDs())

	_, err = svc.RemoveMember(ctx, group.ID, "bob", "bob")
	assert.ErrorIs(t, err, apperr.ErrValidation, "last member")

	// Positions of removed members are never reused.
	invite, err := svc.AddMember(ctx, group.ID, "dave", "bob")
	require.NoError(t, err)
	_, err = svc.RespondToInvite(ctx, invite.ID, "dave", "ACCEPTED")
	require.NoError(t, err)
	group, err = svc.GetGroup(ctx, group.ID, "bob")
	require.NoError(t, err)
	require.Len(t, group.Members, 2)
	assert.Equal(t, 3, group.Members[1].Position)
}

func TestCreateExpense(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Trip", []string{"bob", "carol"})
	require.NoError(t, err)

	entry := mustExpense(t, svc, group.ID, "alice", "100.00", "alice", "bob", "carol")
	assert.Equal(t, models.KindExpense, entry.Kind)
	require.Len(t, entry.Splits, 3)
	assert.Equal(t, "33.34", entry.Splits[0].Amount.String())
	assert.Equal(t, "33.33", entry.Splits[1].Amount.String())
	assert.Equal(t, int64(1), rec.appended.Load())

	inbox, err := svc.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationInfo, inbox[0].Type)

	tests := []struct {
		name    string
		in      ExpenseInput
		actor   string
		wantErr error
	}{
		{
			name:    "actor not a member",
			in:      ExpenseInput{GroupID: group.ID, PayerID: "alice", Description: "x", Amount: money.MustParse("10"), Strategy: models.StrategyEqual, Participants: equalAmong("alice")},
			actor:   "dave",
			wantErr: apperr.ErrAuthorization,
		},
		{
			name:    "participant not a member",
			in:      ExpenseInput{GroupID: group.ID, PayerID: "alice", Description: "x", Amount: money.MustParse("10"), Strategy: models.StrategyEqual, Participants: equalAmong("alice", "dave")},
			actor:   "alice",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "payer not a member",
			in:      ExpenseInput{GroupID: group.ID, PayerID: "dave", Description: "x", Amount: money.MustParse("10"), Strategy: models.StrategyEqual, Participants: equalAmong("alice")},
			actor:   "alice",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing description",
			in:      ExpenseInput{GroupID: group.ID, PayerID: "alice", Amount: money.MustParse("10"), Strategy: models.StrategyEqual, Participants: equalAmong("alice")},
			actor:   "alice",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "sub-cent amount",
			in:      ExpenseInput{GroupID: group.ID, PayerID: "alice", Description: "x", Amount: money.MustParse("10.001"), Strategy: models.StrategyEqual, Participants: equalAmong("alice")},
			actor:   "alice",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown group",
			in:      ExpenseInput{GroupID: "missing", PayerID: "alice", Description: "x", Amount: money.MustParse("10"), Strategy: models.StrategyEqual, Participants: equalAmong("alice")},
			actor:   "alice",
			wantErr: apperr.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, tt.in, tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	history, err := svc.GetGroupHistory(ctx, group.ID, "carol")
	require.NoError(t, err)
	assert.Len(t, history, 1, "rejected expenses leave no trace")
}

func TestSettlementCannotOverpay(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Flat", []string{"bob"})
	require.NoError(t, err)
	mustExpense(t, svc, group.ID, "alice", "100.00", "alice", "bob")

	settle := func(amount string) error {
		_, err := svc.CreateSettlement(ctx, SettlementInput{
			GroupID:    group.ID,
			PayerID:    "bob",
			ReceiverID: "alice",
			Amount:     money.MustParse(amount),
		}, "bob")
		return err
	}

	err = settle("50.01")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "amount exceeds owed balance", err.Error())
	assert.Equal(t, int64(1), rec.rejected.Load())

	require.NoError(t, settle("50.00"))
	assert.ErrorIs(t, settle("0.01"), apperr.ErrValidation)

	// The creditor owes nothing back.
	_, err = svc.CreateSettlement(ctx, SettlementInput{GroupID: group.ID, PayerID: "alice", ReceiverID: "bob", Amount: money.MustParse("1.00")}, "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateSettlement(ctx, SettlementInput{GroupID: group.ID, PayerID: "bob", ReceiverID: "bob", Amount: money.MustParse("1.00")}, "bob")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateSettlement(ctx, SettlementInput{GroupID: group.ID, PayerID: "bob", ReceiverID: "alice", Amount: money.MustParse("1.00")}, "dave")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	balances, err := svc.GetBalances(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, balances.OweList)
	assert.Empty(t, balances.OwedList)
}

func TestExactExpenseSettlesToZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Trip", []string{"bob", "carol"})
	require.NoError(t, err)

	exact := func(pairs ...string) ExpenseInput {
		in := ExpenseInput{
			GroupID:     group.ID,
			PayerID:     "alice",
			Description: "Tickets",
			Amount:      money.MustParse("100.00"),
			Strategy:    models.StrategyExact,
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			in.Participants = append(in.Participants, calculator.Participant{
				UserID: pairs[i],
				Value:  decimal.RequireFromString(pairs[i+1]),
			})
		}
		return in
	}

	_, err = svc.CreateExpense(ctx, exact("bob", "33.333", "carol", "66.667"), "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	entry, err := svc.CreateExpense(ctx, exact("bob", "33.33", "carol", "66.67"), "alice")
	require.NoError(t, err)
	for _, split := range entry.Splits {
		assert.True(t, split.Amount.IsRounded(), "split %s = %s", split.UserID, split.Amount.Exact())
	}

	for payer, amount := range map[string]string{"bob": "33.33", "carol": "66.67"} {
		_, err := svc.CreateSettlement(ctx, SettlementInput{
			GroupID:    group.ID,
			PayerID:    payer,
			ReceiverID: "alice",
			Amount:     money.MustParse(amount),
		}, payer)
		require.NoError(t, err)

		balances, err := svc.GetBalances(ctx, payer)
		require.NoError(t, err)
		assert.Empty(t, balances.OweList, "%s should owe nothing after settling", payer)
	}

	balances, err := svc.GetBalances(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, balances.OwedList)
}

func TestEmptyGroupIDSkipsLock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	unlock := svc.locks.lock("")
	defer unlock()

	done := make(chan error, 1)
	go func() {
		_, err := svc.CreateSettlement(ctx, SettlementInput{
			PayerID:    "bob",
			ReceiverID: "alice",
			Amount:     money.MustParse("1.00"),
		}, "bob")
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, apperr.ErrValidation)
	case <-time.After(5 * time.Second):
		t.Fatal("CreateSettlement blocked on the lock for an empty group id")
	}

	_, err := svc.AddMember(ctx, "", "carol", "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.RemoveMember(ctx, "", "carol", "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.CreateExpense(ctx, ExpenseInput{
		PayerID:      "alice",
		Description:  "Lunch",
		Amount:       money.MustParse("10.00"),
		Strategy:     models.StrategyEqual,
		Participants: equalAmong("alice"),
	}, "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 1, svc.locks.size())
}

func TestConcurrentSettlementsRespectDebt(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Flat", []string{"bob"})
	require.NoError(t, err)
	mustExpense(t, svc, group.ID, "alice", "100.00", "alice", "bob")

	var accepted, rejected atomic.Int64
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.CreateSettlement(ctx, SettlementInput{
				GroupID:    group.ID,
				PayerID:    "bob",
				ReceiverID: "alice",
				Amount:     money.MustParse("50.00"),
			}, "bob")
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, apperr.ErrValidation):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), accepted.Load())
	assert.Equal(t, int64(7), rejected.Load())
	assert.Zero(t, svc.locks.size(), "group locks are released")
}

func TestRemovedMemberKeepsDebts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "alice", "Flat", []string{"bob", "carol"})
	require.NoError(t, err)
	mustExpense(t, svc, group.ID, "alice", "90.00", "alice", "bob", "carol")

	_, err = svc.RemoveMember(ctx, group.ID, "bob", "alice")
	require.NoError(t, err)

	balances, err := svc.GetBalances(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, balances.OwedList, 2)
	assert.Equal(t, "bob", balances.OwedList[0].CounterpartID)
	assert.Equal(t, "30.00", balances.OwedList[0].Amount.String())

	history, err := svc.GetGroupHistory(ctx, group.ID, "bob")
	require.NoError(t, err, "former participants can still read the ledger")
	assert.Len(t, history, 1)

	_, err = svc.GetGroupHistory(ctx, group.ID, "dave")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = svc.CreateSettlement(ctx, SettlementInput{
		GroupID:    group.ID,
		PayerID:    "bob",
		ReceiverID: "alice",
		Amount:     money.MustParse("30.00"),
		Note:       "thanks",
	}, "bob")
	require.NoError(t, err)

	bal, err := svc.GetGroupBalances(ctx, group.ID, "alice")
	require.NoError(t, err)
	require.Len(t, bal.OwedList, 1)
	assert.Equal(t, "carol", bal.OwedList[0].CounterpartID)

	inbox, err := svc.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, inbox)
	assert.Equal(t, "bob paid you 30.00 in Flat: thanks", inbox[0].Message)
}

func TestGroupSummaryAndUserHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	flat, err := svc.CreateGroup(ctx, "alice", "Flat", []string{"bob"})
	require.NoError(t, err)
	trip, err := svc.CreateGroup(ctx, "bob", "Trip", []string{"alice", "carol"})
	require.NoError(t, err)

	mustExpense(t, svc, flat.ID, "alice", "40.00", "bob")
	mustExpense(t, svc, trip.ID, "bob", "30.00", "alice", "bob", "carol")

	summary, err := svc.GetGroupSummary(ctx, trip.ID, "carol")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "bob", summary[1].UserID)
	assert.Equal(t, "30.00", summary[1].Paid.String())
	assert.Equal(t, "20.00", summary[1].Net.String())

	history, err := svc.GetUserHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// alice is owed 40 in one group and owes 10 in the other.
	balances, err := svc.GetBalances(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, balances.OwedList, 1)
	assert.Equal(t, "30.00", balances.OwedList[0].Amount.String())
}

func TestSendNotification(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.SendNotification(ctx, "alice", "bob", "  rent is due  ")
	require.NoError(t, err)
	assert.Equal(t, "rent is due", n.Message)

	_, err = svc.SendNotification(ctx, "alice", "bob", " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.SendNotification(ctx, "alice", "mallory", "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// INFO notifications are cleared the same way invitations are answered.
	_, err = svc.RespondToInvite(ctx, n.ID, "bob", "ACCEPTED")
	require.NoError(t, err)
	inbox, err := svc.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, inbox)
}
