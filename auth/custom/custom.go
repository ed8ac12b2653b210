// Package custom implements the bring-your-own-auth strategies: exchange of
// a caller-issued JWT or an opaque payload verified by a partner-controlled
// endpoint.
package custom

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

// ErrTokenExpired indicates the caller-supplied JWT is already past its
// expiry, so the backend exchange would be rejected anyway.
var ErrTokenExpired = apperrors.New(apperrors.CodeAuthTokenExpired, "supplied jwt is expired")

// Handler exchanges partner credentials for a session token.
type Handler struct {
	api *httpapi.Client
	now func() time.Time
}

// New creates the custom-auth handler.
func New(api *httpapi.Client) *Handler {
	return &Handler{api: api, now: time.Now}
}

// Authenticate implements auth.Handler for the jwt and auth_endpoint tags.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	switch args.Strategy {
	case auth.StrategyJWT:
		return h.authenticateJWT(ctx, args.JWT, args.EncryptionKey)
	case auth.StrategyAuthEndpoint:
		return h.authenticateEndpoint(ctx, args.Payload, args.EncryptionKey)
	}
	return auth.StoredToken{}, fmt.Errorf("strategy %q is not a custom-auth strategy", args.Strategy)
}

// authenticateJWT validates expiry locally before the network round-trip.
// Signature verification stays with the backend, which holds the partner's
// verification key; the SDK only rejects tokens that cannot possibly pass.
func (h *Handler) authenticateJWT(ctx context.Context, rawJWT, encryptionKey string) (auth.StoredToken, error) {
	if rawJWT == "" {
		return auth.StoredToken{}, fmt.Errorf("jwt strategy requires a token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawJWT, claims); err != nil {
		return auth.StoredToken{}, fmt.Errorf("parse jwt: %w", err)
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("read jwt expiry: %w", err)
	}
	if expiry != nil && expiry.Before(h.now()) {
		return auth.StoredToken{}, ErrTokenExpired
	}

	var token auth.StoredToken
	err = h.api.Post(ctx, "/auth/jwt", "", map[string]string{
		"jwt":           rawJWT,
		"encryptionKey": encryptionKey,
	}, &token)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("exchange jwt: %w", err)
	}
	return token, nil
}

func (h *Handler) authenticateEndpoint(ctx context.Context, payload, encryptionKey string) (auth.StoredToken, error) {
	if payload == "" {
		return auth.StoredToken{}, fmt.Errorf("auth_endpoint strategy requires a payload")
	}

	var token auth.StoredToken
	err := h.api.Post(ctx, "/auth/custom-endpoint", "", map[string]string{
		"payload":       payload,
		"encryptionKey": encryptionKey,
	}, &token)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("exchange custom payload: %w", err)
	}
	return token, nil
}
