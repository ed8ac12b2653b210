package wallet

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/client"
	"github.com/keystrand/keystrand-go/transport"
)

// Frame is the legacy sharded-key backend. Signing and address resolution
// go through the frame runtime, which holds the client-resident device
// share.
type Frame struct {
	channel  transport.Channel
	identity client.Identity
	token    auth.StoredToken
}

// NewFrame constructs the frame backend for a sharded account.
func NewFrame(channel transport.Channel, identity client.Identity, token auth.StoredToken) *Frame {
	return &Frame{channel: channel, identity: identity, token: token}
}

// Account implements Wallet.
func (w *Frame) Account(ctx context.Context) (Account, error) {
	var response struct {
		Address string `json:"address"`
	}
	if err := w.channel.Call(ctx, transport.ProcedureGetAddress, map[string]string{
		"walletUserId": w.token.AuthDetails.UserWalletID,
	}, &response); err != nil {
		return nil, fmt.Errorf("resolve frame wallet address: %w", err)
	}
	return &frameAccount{channel: w.channel, address: response.Address}, nil
}

// UserStatus implements Wallet. The frame runtime owns the authoritative
// status for sharded accounts, so the query round-trips rather than deriving
// from the cached token.
func (w *Frame) UserStatus(ctx context.Context) (auth.User, error) {
	var response struct {
		Address string `json:"address"`
	}
	if err := w.channel.Call(ctx, transport.ProcedureGetUserStatus, map[string]string{
		"walletUserId": w.token.AuthDetails.UserWalletID,
	}, &response); err != nil {
		return auth.User{}, fmt.Errorf("query frame user status: %w", err)
	}
	return auth.User{
		Status:      auth.StatusLoggedInWalletInitialized,
		AuthDetails: w.token.AuthDetails,
		Address:     response.Address,
	}, nil
}

// PostSetup implements Wallet.
//
// Device-share bookkeeping is persisted first. The frame-initialization
// round-trip then runs for sharded accounts only: enclave accounts have no
// device share to announce, so the branch skips them outright rather than
// sending an empty flag.
func (w *Frame) PostSetup(ctx context.Context, details SetupDetails) error {
	if details.Details.DeviceShareStored != nil {
		if err := w.channel.Call(ctx, transport.ProcedureStoreDeviceShare, map[string]any{
			"walletUserId":      details.WalletUserID,
			"deviceShareStored": *details.Details.DeviceShareStored,
		}, nil); err != nil {
			return fmt.Errorf("store device share bookkeeping: %w", err)
		}
	}

	if w.token.AuthDetails.WalletType == auth.WalletTypeEnclave {
		return nil
	}

	params := map[string]any{
		"clientId":     w.identity.ClientID(),
		"walletUserId": details.WalletUserID,
		"authCookie":   details.AuthToken,
	}
	if eco := w.identity.Ecosystem(); eco != nil {
		params["ecosystemId"] = eco.ID
		params["partnerId"] = eco.PartnerID
	}
	if details.Details.DeviceShareStored != nil {
		params["deviceShareStored"] = *details.Details.DeviceShareStored
	} else {
		params["deviceShareStored"] = nil
	}
	if err := w.channel.Call(ctx, transport.ProcedureInitFrame, params, nil); err != nil {
		return fmt.Errorf("initialize frame: %w", err)
	}
	return nil
}

type frameAccount struct {
	channel transport.Channel
	address string
}

func (a *frameAccount) Address() string {
	return a.address
}

func (a *frameAccount) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	var response struct {
		Signature string `json:"signature"`
	}
	if err := a.channel.Call(ctx, transport.ProcedureSignMessage, map[string]string{
		"address": a.address,
		"message": hex.EncodeToString(message),
	}, &response); err != nil {
		return nil, fmt.Errorf("sign message with frame wallet: %w", err)
	}
	signature, err := hex.DecodeString(response.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode frame signature: %w", err)
	}
	return signature, nil
}
