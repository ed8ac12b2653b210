package auth

import "encoding/json"

// WalletType declares which custody backend an account uses. The value is
// server-authoritative: it arrives inside AuthDetails and is never derived
// from local configuration.
type WalletType string

const (
	// WalletTypeEnclave means key material is held entirely by the remote
	// custody service.
	WalletTypeEnclave WalletType = "enclave"
	// WalletTypeSharded means the key is split with a client-resident device
	// share, mediated by the embedded frame.
	WalletTypeSharded WalletType = "sharded"
)

// AuthDetails carries account metadata returned alongside a session token.
type AuthDetails struct {
	UserWalletID            string     `json:"userWalletId"`
	WalletType              WalletType `json:"walletType"`
	RecoveryShareManagement string     `json:"recoveryShareManagement,omitempty"`
	Email                   string     `json:"email,omitempty"`
	Phone                   string     `json:"phoneNumber,omitempty"`
}

// StoredToken is the durable proof of a successful authentication. Exactly
// one StoredToken is valid per session; writing a new one supersedes the old.
type StoredToken struct {
	CookieString string      `json:"cookieString"`
	AuthDetails  AuthDetails `json:"authDetails"`
	IsNewUser    bool        `json:"isNewUser,omitempty"`
}

// Encode serializes the token for token-store persistence.
func (t StoredToken) Encode() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeStoredToken restores a token previously produced by Encode.
func DecodeStoredToken(raw string) (StoredToken, error) {
	var token StoredToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return StoredToken{}, err
	}
	return token, nil
}

// WalletDetails is the backend-supplied description of the user's wallet,
// produced once per login and consumed exactly once by post-setup.
type WalletDetails struct {
	Address           string `json:"walletAddress"`
	DeviceShareStored *bool  `json:"deviceShareStored,omitempty"`
}

// AuthResult pairs the session token with the wallet details a strategy
// handler obtained during login.
type AuthResult struct {
	StoredToken   StoredToken   `json:"storedToken"`
	WalletDetails WalletDetails `json:"walletDetails"`
}
