// Package siwe implements externally-signed-message login: the user proves
// control of an existing wallet by signing a backend-issued challenge.
package siwe

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

// Handler drives the challenge/response message-signing flow.
type Handler struct {
	api *httpapi.Client
}

// New creates the signed-message handler.
func New(api *httpapi.Client) *Handler {
	return &Handler{api: api}
}

type payloadRequest struct {
	Address string `json:"address"`
	ChainID int64  `json:"chainId,omitempty"`
}

type payloadResponse struct {
	Payload string `json:"payload"`
}

type loginRequest struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
	Address   string `json:"address"`
}

// Authenticate implements auth.Handler.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	if args.Signer == nil {
		return auth.StoredToken{}, fmt.Errorf("wallet strategy requires a signer")
	}
	address := args.Signer.Address()

	var challenge payloadResponse
	err := h.api.Post(ctx, "/auth/siwe/payload", "", payloadRequest{
		Address: address,
		ChainID: args.ChainID,
	}, &challenge)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("fetch login payload: %w", err)
	}

	signature, err := args.Signer.SignMessage(ctx, []byte(challenge.Payload))
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("sign login payload: %w", err)
	}

	var token auth.StoredToken
	err = h.api.Post(ctx, "/auth/siwe/login", "", loginRequest{
		Payload:   challenge.Payload,
		Signature: hex.EncodeToString(signature),
		Address:   address,
	}, &token)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("verify signed payload: %w", err)
	}
	return token, nil
}
