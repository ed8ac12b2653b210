// Package wallet provides the custody backends a logged-in user signs with.
//
// Two backends implement one capability set: Enclave (remote custody, no
// local key material) and Frame (legacy sharded key with a frame-resident
// device share). Backend selection is server-authoritative; the connector
// picks the variant from the account's wallet inventory, never from local
// configuration.
package wallet

import (
	"context"

	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
)

// ErrNotProvisioned indicates an account with zero generated wallets. This is
// terminal for the login attempt; the account must be provisioned server-side
// first.
var ErrNotProvisioned = apperrors.New(apperrors.CodeWalletNotProvisioned,
	"account has no wallet generated yet")

// Account can sign on behalf of the user's wallet address.
type Account interface {
	// Address returns the wallet address.
	Address() string
	// SignMessage signs an arbitrary message. Signing internals are remote
	// for both backends; this SDK never holds full key material.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// SetupDetails is the one-shot payload handed to PostSetup after login.
type SetupDetails struct {
	Details      auth.WalletDetails
	AuthToken    string
	WalletUserID string
}

// Wallet is the common capability set over both custody backends.
type Wallet interface {
	// Account returns the signing account.
	Account(ctx context.Context) (Account, error)
	// UserStatus reports the wallet-initialized user status.
	UserStatus(ctx context.Context) (auth.User, error)
	// PostSetup finalizes wallet state after a successful login.
	PostSetup(ctx context.Context, details SetupDetails) error
}
