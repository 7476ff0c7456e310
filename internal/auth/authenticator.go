// Package auth verifies credentials and issues session tokens for the RPC
// layer. The ledger core never sees credentials; it only receives the user id
// the transport extracted from a token.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given email, username and credential.
	Register(ctx context.Context, email, username, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
