// Package oauthflow implements federated social login through an
// externally-visible browser surface.
//
// The flow is an explicit suspend point: the handler opens the provider URL,
// then polls the backend for the flow result keyed by a one-shot nonce.
// Closing the surface or cancelling the context resolves the call with a
// cancellation fault instead of hanging.
package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
	"github.com/keystrand/keystrand-go/internal/platform/id"
)

// Window is an open login surface. Closed fires when the user dismisses it.
type Window interface {
	Closed() <-chan struct{}
	Close() error
}

// Surface opens provider login URLs in a platform-appropriate window.
type Surface interface {
	Open(ctx context.Context, loginURL string) (Window, error)
}

// Handler drives the social login flow for every federated provider tag.
type Handler struct {
	api          *httpapi.Client
	surface      Surface
	pollInterval time.Duration
}

// New creates the social login handler. pollInterval <= 0 selects the
// 1-second default.
func New(api *httpapi.Client, surface Surface, pollInterval time.Duration) *Handler {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Handler{api: api, surface: surface, pollInterval: pollInterval}
}

// LoginURL builds the provider login URL for a flow nonce. Exposed so
// redirect-mode embedders can navigate the full page themselves.
func (h *Handler) LoginURL(strategy auth.Strategy, nonce, redirectURL string, mode auth.OAuthMode) string {
	query := url.Values{"nonce": {nonce}}
	if redirectURL != "" {
		query.Set("redirectUrl", redirectURL)
	}
	if mode != "" {
		query.Set("mode", string(mode))
	}
	return fmt.Sprintf("%s/auth/social/%s?%s", h.api.BaseURL(), strategy, query.Encode())
}

// BeginRedirect starts a full-page redirect flow and returns the URL the
// embedder must navigate to. Completion arrives out of band on the redirect
// target, so there is nothing to await here.
func (h *Handler) BeginRedirect(strategy auth.Strategy, mode auth.OAuthMode, redirectURL string) (string, error) {
	if !strategy.Social() {
		return "", fmt.Errorf("strategy %q is not a social login", strategy)
	}
	nonce, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("mint flow nonce: %w", err)
	}
	if mode == "" {
		mode = auth.OAuthModeRedirect
	}
	return h.LoginURL(strategy, nonce, redirectURL, mode), nil
}

// Authenticate implements auth.Handler for all federated provider tags.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	if !args.Strategy.Social() {
		return auth.StoredToken{}, fmt.Errorf("strategy %q is not a social login", args.Strategy)
	}
	if h.surface == nil {
		return auth.StoredToken{}, fmt.Errorf("social login requires a window surface")
	}

	nonce, err := id.NewID()
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("mint flow nonce: %w", err)
	}

	window, err := h.surface.Open(ctx, h.LoginURL(args.Strategy, nonce, args.RedirectURL, args.Mode))
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("open login surface: %w", err)
	}
	defer func() { _ = window.Close() }()

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return auth.StoredToken{}, apperrors.Wrap(apperrors.CodeAuthCancelled,
				"social login cancelled", ctx.Err())
		case <-window.Closed():
			return auth.StoredToken{}, auth.ErrCancelled
		case <-ticker.C:
			token, done, err := h.pollResult(ctx, nonce)
			if err != nil {
				return auth.StoredToken{}, err
			}
			if done {
				return token, nil
			}
		}
	}
}

// pollResult asks the backend whether the flow completed. A not-found
// answer means the provider round-trip is still in progress.
func (h *Handler) pollResult(ctx context.Context, nonce string) (auth.StoredToken, bool, error) {
	var token auth.StoredToken
	query := url.Values{"nonce": {nonce}}
	err := h.api.Get(ctx, "/auth/social/result", query, "", &token)
	if err != nil {
		if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
			return auth.StoredToken{}, false, nil
		}
		return auth.StoredToken{}, false, fmt.Errorf("poll social login result: %w", err)
	}
	return token, true, nil
}
