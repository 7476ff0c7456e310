package service

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperr"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"validation", apperr.Validation("bad"), connect.CodeInvalidArgument},
		{"authorization", apperr.Authorization("no"), connect.CodePermissionDenied},
		{"conflict", apperr.Conflict("again"), connect.CodeAlreadyExists},
		{"not found", apperr.NotFound("gone"), connect.CodeNotFound},
		{"wrapped kind", fmt.Errorf("outer: %w", apperr.NotFound("gone")), connect.CodeNotFound},
		{"connect error passes through", connect.NewError(connect.CodeUnauthenticated, errors.New("x")), connect.CodeUnauthenticated},
		{"unclassified", errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connect.CodeOf(toConnectError(tt.err)); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToConnectErrorHidesInternalDetail(t *testing.T) {
	var connectErr *connect.Error
	if !errors.As(toConnectError(errors.New("secret path /var/db")), &connectErr) {
		t.Fatal("expected a connect error")
	}
	if connectErr.Message() != "internal error" {
		t.Errorf("message = %q, want %q", connectErr.Message(), "internal error")
	}
}
