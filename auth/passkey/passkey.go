// Package passkey implements custodial passkey login: registration of a new
// credential or assertion of an existing one through a platform-appropriate
// passkey client.
package passkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

// ErrCeremonyAborted is returned by Client implementations when the user
// dismisses the platform passkey dialog.
var ErrCeremonyAborted = apperrors.New(apperrors.CodeAuthCancelled, "passkey ceremony aborted")

// Client performs the platform passkey ceremony. Implementations wrap the
// host's authenticator surface and return the raw credential response JSON
// the backend verifies.
type Client interface {
	Register(ctx context.Context, options protocol.CredentialCreation) (json.RawMessage, error)
	Authenticate(ctx context.Context, options protocol.CredentialAssertion) (json.RawMessage, error)
}

// Handler drives the challenge, ceremony, and verification legs of a
// passkey login.
type Handler struct {
	api    *httpapi.Client
	client Client
	cfg    Config

	// domainOverride pins the relying party for applications spanning
	// multiple origins; empty means configured defaults apply.
	domainOverride string
}

// New creates the passkey handler.
func New(api *httpapi.Client, passkeyClient Client, cfg Config, domainOverride string) *Handler {
	return &Handler{api: api, client: passkeyClient, cfg: cfg, domainOverride: domainOverride}
}

type challengeRequest struct {
	Intent   auth.PasskeyIntent `json:"intent"`
	Username string             `json:"username,omitempty"`
	RPID     string             `json:"rpId"`
	RPName   string             `json:"rpName"`
}

type verifyRequest struct {
	Intent   auth.PasskeyIntent `json:"intent"`
	Response json.RawMessage    `json:"response"`
	RPID     string             `json:"rpId"`
}

// Authenticate implements auth.Handler for the passkey tag.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	if h.client == nil {
		return auth.StoredToken{}, fmt.Errorf("passkey strategy requires a passkey client")
	}
	rp := ResolveRelyingParty(h.cfg, h.domainOverride)

	switch args.PasskeyIntent {
	case auth.PasskeySignUp:
		return h.register(ctx, rp, args.PasskeyName)
	case auth.PasskeySignIn:
		return h.assert(ctx, rp)
	}
	return auth.StoredToken{}, fmt.Errorf("passkey strategy requires intent %q or %q",
		auth.PasskeySignUp, auth.PasskeySignIn)
}

func (h *Handler) register(ctx context.Context, rp RelyingParty, username string) (auth.StoredToken, error) {
	var creation protocol.CredentialCreation
	err := h.api.Post(ctx, "/auth/passkey/challenge", "", challengeRequest{
		Intent:   auth.PasskeySignUp,
		Username: username,
		RPID:     rp.ID,
		RPName:   rp.Name,
	}, &creation)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("fetch registration challenge: %w", err)
	}

	response, err := h.client.Register(ctx, creation)
	if err != nil {
		return auth.StoredToken{}, ceremonyError(err)
	}
	return h.verify(ctx, auth.PasskeySignUp, rp, response)
}

func (h *Handler) assert(ctx context.Context, rp RelyingParty) (auth.StoredToken, error) {
	var assertion protocol.CredentialAssertion
	err := h.api.Post(ctx, "/auth/passkey/challenge", "", challengeRequest{
		Intent: auth.PasskeySignIn,
		RPID:   rp.ID,
		RPName: rp.Name,
	}, &assertion)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("fetch login challenge: %w", err)
	}

	response, err := h.client.Authenticate(ctx, assertion)
	if err != nil {
		return auth.StoredToken{}, ceremonyError(err)
	}
	return h.verify(ctx, auth.PasskeySignIn, rp, response)
}

func (h *Handler) verify(ctx context.Context, intent auth.PasskeyIntent, rp RelyingParty, response json.RawMessage) (auth.StoredToken, error) {
	var token auth.StoredToken
	err := h.api.Post(ctx, "/auth/passkey/verify", "", verifyRequest{
		Intent:   intent,
		Response: response,
		RPID:     rp.ID,
	}, &token)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("verify passkey response: %w", err)
	}
	return token, nil
}

// ceremonyError distinguishes user dismissal from real failures.
func ceremonyError(err error) error {
	if errors.Is(err, ErrCeremonyAborted) || errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.CodeAuthCancelled, "passkey ceremony cancelled", err)
	}
	return fmt.Errorf("passkey ceremony: %w", err)
}
