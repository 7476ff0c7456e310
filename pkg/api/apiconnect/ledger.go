package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServiceCreateExpenseProcedure    = "/splitledger.v1.LedgerService/CreateExpense"
	LedgerServiceCreateSettlementProcedure = "/splitledger.v1.LedgerService/CreateSettlement"
	LedgerServiceGetBalancesProcedure      = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceGetGroupBalancesProcedure = "/splitledger.v1.LedgerService/GetGroupBalances"
	LedgerServiceGetGroupHistoryProcedure  = "/splitledger.v1.LedgerService/GetGroupHistory"
	LedgerServiceGetUserHistoryProcedure   = "/splitledger.v1.LedgerService/GetUserHistory"
)

// LedgerServiceHandler is implemented by the server side of the LedgerService.
// LedgerService records expenses and settlements and reports balances.
type LedgerServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetGroupHistory(context.Context, *connect.Request[api.GetGroupHistoryRequest]) (*connect.Response[api.GetGroupHistoryResponse], error)
	GetUserHistory(context.Context, *connect.Request[api.GetUserHistoryRequest]) (*connect.Response[api.GetUserHistoryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler serving svc. It returns the path
// prefix to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateExpenseProcedure, connect.NewUnaryHandler(LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(LedgerServiceCreateSettlementProcedure, connect.NewUnaryHandler(LedgerServiceCreateSettlementProcedure, svc.CreateSettlement, opts...))
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(LedgerServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(LedgerServiceGetGroupHistoryProcedure, connect.NewUnaryHandler(LedgerServiceGetGroupHistoryProcedure, svc.GetGroupHistory, opts...))
	mux.Handle(LedgerServiceGetUserHistoryProcedure, connect.NewUnaryHandler(LedgerServiceGetUserHistoryProcedure, svc.GetUserHistory, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient is a client for the LedgerService.
type LedgerServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetGroupHistory(context.Context, *connect.Request[api.GetGroupHistoryRequest]) (*connect.Response[api.GetGroupHistoryResponse], error)
	GetUserHistory(context.Context, *connect.Request[api.GetUserHistoryRequest]) (*connect.Response[api.GetUserHistoryResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService at baseURL
// (for example, http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ledgerServiceClient{
		createExpense:    connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+LedgerServiceCreateExpenseProcedure, opts...),
		createSettlement: connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL+LedgerServiceCreateSettlementProcedure, opts...),
		getBalances:      connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
		getGroupHistory:  connect.NewClient[api.GetGroupHistoryRequest, api.GetGroupHistoryResponse](httpClient, baseURL+LedgerServiceGetGroupHistoryProcedure, opts...),
		getUserHistory:   connect.NewClient[api.GetUserHistoryRequest, api.GetUserHistoryResponse](httpClient, baseURL+LedgerServiceGetUserHistoryProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createExpense    *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	createSettlement *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	getBalances      *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getGroupHistory  *connect.Client[api.GetGroupHistoryRequest, api.GetGroupHistoryResponse]
	getUserHistory   *connect.Client[api.GetUserHistoryRequest, api.GetUserHistoryResponse]
}

func (c *ledgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupHistory(ctx context.Context, req *connect.Request[api.GetGroupHistoryRequest]) (*connect.Response[api.GetGroupHistoryResponse], error) {
	return c.getGroupHistory.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetUserHistory(ctx context.Context, req *connect.Request[api.GetUserHistoryRequest]) (*connect.Response[api.GetUserHistoryResponse], error) {
	return c.getUserHistory.CallUnary(ctx, req)
}
