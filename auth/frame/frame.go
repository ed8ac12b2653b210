// Package frame implements the login strategies hosted entirely by the
// embedded frame runtime: the modal login and frame-driven email
// verification.
package frame

import (
	"context"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/transport"
)

// Handler delegates authentication to the frame runtime over the channel.
type Handler struct {
	channel transport.Channel
}

// New creates the frame-delegated handler.
func New(channel transport.Channel) *Handler {
	return &Handler{channel: channel}
}

// Authenticate implements auth.Handler for the iframe and
// iframe_email_verification tags.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	switch args.Strategy {
	case auth.StrategyFrame:
		return h.call(ctx, transport.ProcedureLoginWithModal, nil)
	case auth.StrategyFrameEmailVerification:
		if args.Email == "" {
			return auth.StoredToken{}, fmt.Errorf("iframe email verification requires an email address")
		}
		return h.call(ctx, transport.ProcedureLoginWithEmailVerification, map[string]string{
			"email": args.Email,
		})
	}
	return auth.StoredToken{}, fmt.Errorf("strategy %q is not frame-hosted", args.Strategy)
}

func (h *Handler) call(ctx context.Context, procedure string, params any) (auth.StoredToken, error) {
	var result struct {
		StoredToken auth.StoredToken `json:"storedToken"`
	}
	if err := h.channel.Call(ctx, procedure, params, &result); err != nil {
		return auth.StoredToken{}, fmt.Errorf("frame login %s: %w", procedure, err)
	}
	if result.StoredToken.CookieString == "" {
		return auth.StoredToken{}, fmt.Errorf("frame login %s returned no token", procedure)
	}
	return result.StoredToken, nil
}
