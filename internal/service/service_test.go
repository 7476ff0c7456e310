package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// headerAuth trusts the test header instead of a token.
func headerAuth() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithUserID(ctx, id)
			}
			return next(ctx, req)
		}
	}
}

type testClients struct {
	auth   apiconnect.AuthServiceClient
	groups apiconnect.GroupServiceClient
	ledger apiconnect.LedgerServiceClient
	store  *sqlite.SQLiteStore
}

// setupTestServer serves all three services over httptest. With useJWT the
// real token interceptor guards them; otherwise the test header names the caller.
func setupTestServer(t *testing.T, useJWT bool) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	var interceptor connect.Interceptor = headerAuth()
	if useJWT {
		interceptor = middleware.RequireAuth(jwtManager, PublicProcedures...)
	}

	core := ledger.New(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	Mount(mux,
		NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger),
		NewGroupService(core, store),
		NewLedgerService(core),
		connect.WithInterceptors(interceptor),
	)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		auth:   apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		store:  store,
	}
}

func (c *testClients) seedUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, c.store.CreateUser(context.Background(), &models.User{
			ID: id, Username: id, Email: id + "@example.com", CreatedAt: 1,
		}))
	}
}

func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

func TestGroupAndInviteFlow(t *testing.T) {
	c := setupTestServer(t, false)
	c.seedUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	created, err := c.groups.CreateGroup(ctx, as("alice", &api.CreateGroupRequest{Name: "Roommates", MemberIDs: []string{"bob"}}))
	require.NoError(t, err)
	group := created.Msg.Group
	assert.Equal(t, "alice", group.AdminID)
	require.Len(t, group.Members, 2)
	assert.Equal(t, "bob", group.Members[1].Username)

	_, err = c.groups.GetGroup(ctx, as("carol", &api.GetGroupRequest{GroupID: group.ID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = c.groups.GetGroup(ctx, as("alice", &api.GetGroupRequest{GroupID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	invited, err := c.groups.AddMember(ctx, as("bob", &api.AddMemberRequest{GroupID: group.ID, UserID: "carol"}))
	require.NoError(t, err)
	assert.Equal(t, "INVITE", invited.Msg.Invitation.Type)

	_, err = c.groups.AddMember(ctx, as("alice", &api.AddMemberRequest{GroupID: group.ID, UserID: "carol"}))
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

	inbox, err := c.groups.ListNotifications(ctx, as("carol", &api.ListNotificationsRequest{}))
	require.NoError(t, err)
	require.Len(t, inbox.Msg.Notifications, 1)

	_, err = c.groups.RespondToInvite(ctx, as("carol", &api.RespondToInviteRequest{
		NotificationID: inbox.Msg.Notifications[0].ID,
		Response:       "ACCEPTED",
	}))
	require.NoError(t, err)

	_, err = c.groups.RespondToInvite(ctx, as("carol", &api.RespondToInviteRequest{
		NotificationID: inbox.Msg.Notifications[0].ID,
		Response:       "REJECTED",
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))
	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	assert.Equal(t, "invitation already resolved", connectErr.Message())

	listed, err := c.groups.ListGroups(ctx, as("carol", &api.ListGroupsRequest{}))
	require.NoError(t, err)
	require.Len(t, listed.Msg.Groups, 1)
	assert.Len(t, listed.Msg.Groups[0].Members, 3)

	removed, err := c.groups.RemoveMember(ctx, as("alice", &api.RemoveMemberRequest{GroupID: group.ID, UserID: "alice"}))
	require.NoError(t, err)
	assert.Equal(t, "bob", removed.Msg.Group.AdminID)

	sent, err := c.groups.SendNotification(ctx, as("bob", &api.SendNotificationRequest{UserID: "carol", Message: "welcome"}))
	require.NoError(t, err)
	assert.Equal(t, "INFO", sent.Msg.Notification.Type)
}

func TestLedgerFlow(t *testing.T) {
	c := setupTestServer(t, false)
	c.seedUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	created, err := c.groups.CreateGroup(ctx, as("alice", &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{"bob", "carol"}}))
	require.NoError(t, err)
	groupID := created.Msg.Group.ID

	expense, err := c.ledger.CreateExpense(ctx, as("alice", &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Hotel",
		Amount:      money.MustParse("100.00"),
		Strategy:    "equal",
		Participants: []api.Participant{
			{UserID: "alice", Included: true},
			{UserID: "bob", Included: true},
			{UserID: "carol", Included: true},
		},
	}))
	require.NoError(t, err)
	entry := expense.Msg.Entry
	assert.Equal(t, "EXPENSE", entry.Kind)
	assert.Equal(t, "alice", entry.PayerID)
	require.Len(t, entry.Splits, 3)
	assert.Equal(t, "33.34", entry.Splits[0].Amount.String())

	_, err = c.ledger.CreateExpense(ctx, as("alice", &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Taxi",
		Amount:      money.MustParse("30.00"),
		Strategy:    "EXACT",
		Participants: []api.Participant{
			{UserID: "bob", Value: api.NewDecimal(decimal.RequireFromString("10"))},
			{UserID: "carol", Value: api.NewDecimal(decimal.RequireFromString("10"))},
		},
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "exact splits must add up")

	_, err = c.ledger.CreateExpense(ctx, as("alice", &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Taxi",
		Amount:      money.MustParse("30.00"),
		Strategy:    "SHARES",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = c.ledger.CreateSettlement(ctx, as("bob", &api.CreateSettlementRequest{
		GroupID:    groupID,
		ReceiverID: "alice",
		Amount:     money.MustParse("33.34"),
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	settled, err := c.ledger.CreateSettlement(ctx, as("bob", &api.CreateSettlementRequest{
		GroupID:    groupID,
		ReceiverID: "alice",
		Amount:     money.MustParse("33.33"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "SETTLEMENT", settled.Msg.Entry.Kind)
	assert.Equal(t, "Settlement", settled.Msg.Entry.Description)

	balances, err := c.ledger.GetBalances(ctx, as("alice", &api.GetBalancesRequest{}))
	require.NoError(t, err)
	require.Len(t, balances.Msg.OwedList, 1)
	assert.Equal(t, "carol", balances.Msg.OwedList[0].CounterpartID)
	assert.Equal(t, "33.33", balances.Msg.OwedList[0].Amount.String())
	assert.Empty(t, balances.Msg.OweList)

	groupBalances, err := c.ledger.GetGroupBalances(ctx, as("carol", &api.GetGroupBalancesRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, groupBalances.Msg.OweList, 1)
	assert.Equal(t, "alice", groupBalances.Msg.OweList[0].CounterpartID)
	assert.Len(t, groupBalances.Msg.Members, 3)

	history, err := c.ledger.GetGroupHistory(ctx, as("carol", &api.GetGroupHistoryRequest{GroupID: groupID}))
	require.NoError(t, err)
	require.Len(t, history.Msg.Entries, 2)
	assert.Equal(t, entry.ID, history.Msg.Entries[0].ID)

	userHistory, err := c.ledger.GetUserHistory(ctx, as("bob", &api.GetUserHistoryRequest{}))
	require.NoError(t, err)
	assert.Len(t, userHistory.Msg.Entries, 2)
}

func TestUnauthenticatedCall(t *testing.T) {
	c := setupTestServer(t, false)
	_, err := c.ledger.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestAuthFlowWithJWT(t *testing.T) {
	c := setupTestServer(t, true)
	ctx := context.Background()

	registered, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "password123",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Msg.Token)
	assert.Equal(t, "alice@example.com", registered.Msg.User.Email)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice again",
		Password: "password123",
	}))
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "short",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "password123"}))
	require.NoError(t, err)

	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer "+login.Msg.Token)
	me, err := c.auth.GetCurrentUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Msg.User.Username)

	_, err = c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	c.seedUsers(t, "bobby")
	search := connect.NewRequest(&api.SearchUsersRequest{Query: "bob"})
	search.Header().Set("Authorization", "Bearer "+login.Msg.Token)
	found, err := c.auth.SearchUsers(ctx, search)
	require.NoError(t, err)
	require.Len(t, found.Msg.Users, 1)
	assert.Equal(t, "bobby", found.Msg.Users[0].ID)
}
