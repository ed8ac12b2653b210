package wallet

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

// Enclave is the remote-custody backend. No key material ever lives on the
// host; every signing operation is a backend call scoped by the application
// identity and the wallet address.
type Enclave struct {
	api     *httpapi.Client
	address string
	token   auth.StoredToken
}

// NewEnclave constructs the enclave backend for an initialized account.
func NewEnclave(api *httpapi.Client, address string, token auth.StoredToken) *Enclave {
	return &Enclave{api: api, address: address, token: token}
}

// Account implements Wallet.
func (w *Enclave) Account(ctx context.Context) (Account, error) {
	return &enclaveAccount{api: w.api, address: w.address, authToken: w.token.CookieString}, nil
}

// UserStatus implements Wallet.
func (w *Enclave) UserStatus(ctx context.Context) (auth.User, error) {
	return auth.User{
		Status:      auth.StatusLoggedInWalletInitialized,
		AuthDetails: w.token.AuthDetails,
		Address:     w.address,
	}, nil
}

// PostSetup implements Wallet. There is no device share to persist for
// enclave custody, so setup is local bookkeeping only.
func (w *Enclave) PostSetup(ctx context.Context, details SetupDetails) error {
	if details.WalletUserID != "" && w.token.AuthDetails.UserWalletID == "" {
		w.token.AuthDetails.UserWalletID = details.WalletUserID
	}
	if details.Details.Address != "" {
		w.address = details.Details.Address
	}
	return nil
}

type enclaveAccount struct {
	api       *httpapi.Client
	address   string
	authToken string
}

func (a *enclaveAccount) Address() string {
	return a.address
}

func (a *enclaveAccount) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	request := map[string]string{
		"address": a.address,
		"message": hex.EncodeToString(message),
	}
	var response struct {
		Signature string `json:"signature"`
	}
	if err := a.api.Post(ctx, "/enclave-wallet/sign-message", a.authToken, request, &response); err != nil {
		return nil, fmt.Errorf("sign message with enclave: %w", err)
	}
	signature, err := hex.DecodeString(response.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode enclave signature: %w", err)
	}
	return signature, nil
}
