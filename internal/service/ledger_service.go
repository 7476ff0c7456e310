package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	ledger *ledger.Service
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(ledger *ledger.Service) *LedgerService {
	return &LedgerService{ledger: ledger}
}

// CreateExpense records an expense. The payer defaults to the caller.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"strategy", req.Msg.Strategy,
		"participants", len(req.Msg.Participants),
	)

	strategy, err := models.ParseStrategy(req.Msg.Strategy)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	payer := req.Msg.PayerID
	if payer == "" {
		payer = userID
	}

	entry, err := s.ledger.CreateExpense(ctx, ledger.ExpenseInput{
		GroupID:      req.Msg.GroupID,
		PayerID:      payer,
		Description:  req.Msg.Description,
		Amount:       req.Msg.Amount,
		Strategy:     strategy,
		Participants: toParticipants(req.Msg.Participants),
	}, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateExpenseResponse{Entry: toAPIEntry(entry)}), nil
}

// CreateSettlement records a payment between two users. The payer defaults
// to the caller.
func (s *LedgerService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	payer := req.Msg.PayerID
	if payer == "" {
		payer = userID
	}

	entry, err := s.ledger.CreateSettlement(ctx, ledger.SettlementInput{
		GroupID:    req.Msg.GroupID,
		PayerID:    payer,
		ReceiverID: req.Msg.ReceiverID,
		Amount:     req.Msg.Amount,
		Note:       req.Msg.Note,
	}, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateSettlementResponse{Entry: toAPIEntry(entry)}), nil
}

// GetBalances returns the caller's wallet across every group.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.GetBalances(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBalancesResponse{
		OweList:  toAPIBalances(b.OweList),
		OwedList: toAPIBalances(b.OwedList),
	}), nil
}

// GetGroupBalances returns the caller's wallet in one group plus the
// per-member summary.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.GetGroupBalances(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	summary, err := s.ledger.GetGroupSummary(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		OweList:  toAPIBalances(b.OweList),
		OwedList: toAPIBalances(b.OwedList),
		Members:  toAPIMemberBalances(summary),
	}), nil
}

// GetGroupHistory returns a group's ledger in creation order.
func (s *LedgerService) GetGroupHistory(ctx context.Context, req *connect.Request[api.GetGroupHistoryRequest]) (*connect.Response[api.GetGroupHistoryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.GetGroupHistory(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetGroupHistoryResponse{Entries: toAPIEntries(entries)}), nil
}

// GetUserHistory returns every entry the caller paid or shares, across groups.
func (s *LedgerService) GetUserHistory(ctx context.Context, req *connect.Request[api.GetUserHistoryRequest]) (*connect.Response[api.GetUserHistoryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.GetUserHistory(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetUserHistoryResponse{Entries: toAPIEntries(entries)}), nil
}
