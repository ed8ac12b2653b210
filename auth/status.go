package auth

// UserStatus describes the session and wallet state of the current user.
// It is derived on demand, never stored.
type UserStatus int

const (
	// StatusLoggedOut means no session token exists.
	StatusLoggedOut UserStatus = iota
	// StatusLoggedInWalletUninitialized means a session exists but the wallet
	// is not ready to sign.
	StatusLoggedInWalletUninitialized
	// StatusLoggedInWalletInitialized means the wallet is fully set up.
	StatusLoggedInWalletInitialized
)

// String implements fmt.Stringer.
func (s UserStatus) String() string {
	switch s {
	case StatusLoggedOut:
		return "logged_out"
	case StatusLoggedInWalletUninitialized:
		return "logged_in_wallet_uninitialized"
	case StatusLoggedInWalletInitialized:
		return "logged_in_wallet_initialized"
	}
	return "unknown"
}

// User is the status-tagged result of a GetUser call. AuthDetails and
// Address are populated only when the status is logged-in.
type User struct {
	Status      UserStatus
	AuthDetails AuthDetails
	Address     string
}
