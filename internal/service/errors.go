package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
)

var errInternal = errors.New("internal error")

// toConnectError maps ledger error kinds onto Connect codes. Unclassified
// errors are logged and replaced with a generic message.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case apperr.KindAuthorization:
		return connect.NewError(connect.CodePermissionDenied, err)
	case apperr.KindConflict:
		return connect.NewError(connect.CodeAlreadyExists, err)
	case apperr.KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	default:
		slog.Error("Internal error", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

// callerID returns the authenticated user id placed in ctx by the auth interceptor.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
