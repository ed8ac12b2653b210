// Package guest implements ephemeral guest login: no credential, one
// account per installation.
package guest

import (
	"context"
	"fmt"
	"sync"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
	"github.com/keystrand/keystrand-go/internal/platform/id"
)

// Handler exchanges a per-installation session id for a session token. The
// session id is minted once per handler and reused, so repeated guest logins
// within one connector lifetime land on the same guest account.
type Handler struct {
	api *httpapi.Client

	mu        sync.Mutex
	sessionID string
}

// New creates the guest handler. A non-empty sessionID pins the guest
// account across restarts; callers that persist it can hand it back here.
func New(api *httpapi.Client, sessionID string) *Handler {
	return &Handler{api: api, sessionID: sessionID}
}

// SessionID returns the installation session id, minting one on first use.
func (h *Handler) SessionID() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessionID == "" {
		minted, err := id.NewID()
		if err != nil {
			return "", fmt.Errorf("mint guest session id: %w", err)
		}
		h.sessionID = minted
	}
	return h.sessionID, nil
}

// Authenticate implements auth.Handler.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	sessionID, err := h.SessionID()
	if err != nil {
		return auth.StoredToken{}, err
	}

	var token auth.StoredToken
	err = h.api.Post(ctx, "/auth/guest", "", map[string]string{
		"sessionId": sessionID,
	}, &token)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("guest login: %w", err)
	}
	return token, nil
}
