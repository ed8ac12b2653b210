package auth

import (
	"context"
	"fmt"

	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
)

var (
	// ErrUnknownStrategy indicates a strategy tag outside the supported set.
	ErrUnknownStrategy = apperrors.New(apperrors.CodeAuthUnknownStrategy, "unknown authentication strategy")
	// ErrCancelled indicates the user aborted an interactive flow.
	ErrCancelled = apperrors.New(apperrors.CodeAuthCancelled, "authentication cancelled by user")
)

// OAuthMode selects how a federated login surface is presented.
type OAuthMode string

const (
	OAuthModePopup    OAuthMode = "popup"
	OAuthModeRedirect OAuthMode = "redirect"
	OAuthModeWindow   OAuthMode = "window"
)

// PasskeyIntent selects between registering a new credential and asserting
// an existing one.
type PasskeyIntent string

const (
	PasskeySignUp PasskeyIntent = "sign-up"
	PasskeySignIn PasskeyIntent = "sign-in"
)

// Signer signs login challenges with an externally-managed wallet key.
type Signer interface {
	// Address returns the wallet address the signature will be attributed to.
	Address() string
	// SignMessage signs the raw challenge message.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// Args is the tagged argument record for one authentication attempt. Only
// the fields belonging to the selected Strategy are consulted.
type Args struct {
	Strategy Strategy

	// Email and phone OTP.
	Email string
	Phone string
	Code  string

	// Custom JWT exchange.
	JWT string
	// EncryptionKey is shared by the jwt and auth_endpoint strategies.
	EncryptionKey string

	// Custom auth-endpoint exchange.
	Payload string

	// Passkey ceremony.
	PasskeyIntent PasskeyIntent
	PasskeyName   string

	// Federated social login.
	Mode        OAuthMode
	RedirectURL string

	// Externally-signed-message login.
	Signer  Signer
	ChainID int64
}

// Validate checks the strategy tag against the closed set and enforces the
// per-strategy required fields.
func (a Args) Validate() error {
	if !a.Strategy.Known() {
		return apperrors.WithMetadata(apperrors.CodeAuthUnknownStrategy,
			fmt.Sprintf("unknown authentication strategy %q", a.Strategy),
			map[string]string{"strategy": string(a.Strategy)})
	}
	switch a.Strategy {
	case StrategyEmail:
		if a.Email == "" {
			return fmt.Errorf("email strategy requires an email address")
		}
	case StrategyPhone:
		if a.Phone == "" {
			return fmt.Errorf("phone strategy requires a phone number")
		}
	case StrategyJWT:
		if a.JWT == "" {
			return fmt.Errorf("jwt strategy requires a token")
		}
	case StrategyAuthEndpoint:
		if a.Payload == "" {
			return fmt.Errorf("auth_endpoint strategy requires a payload")
		}
	case StrategyFrameEmailVerification:
		if a.Email == "" {
			return fmt.Errorf("iframe email verification requires an email address")
		}
	case StrategyPasskey:
		if a.PasskeyIntent != PasskeySignUp && a.PasskeyIntent != PasskeySignIn {
			return fmt.Errorf("passkey strategy requires intent %q or %q", PasskeySignUp, PasskeySignIn)
		}
	case StrategyWallet:
		if a.Signer == nil {
			return fmt.Errorf("wallet strategy requires a signer")
		}
	}
	return nil
}

// Handler turns strategy-specific input into a normalized StoredToken.
// Implementations live in the per-strategy subpackages.
type Handler interface {
	Authenticate(ctx context.Context, args Args) (StoredToken, error)
}
