package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	apiconnect.AuthServiceRegisterProcedure,
	apiconnect.AuthServiceLoginProcedure,
}

// Mount registers the three RPC services on mux with the given handler options.
func Mount(mux *http.ServeMux, authSvc *AuthService, groupSvc *GroupService, ledgerSvc *LedgerService, opts ...connect.HandlerOption) {
	mux.Handle(apiconnect.NewAuthServiceHandler(authSvc, opts...))
	mux.Handle(apiconnect.NewGroupServiceHandler(groupSvc, opts...))
	mux.Handle(apiconnect.NewLedgerServiceHandler(ledgerSvc, opts...))
}
