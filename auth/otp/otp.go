// Package otp implements the two-step email and phone one-time-code
// strategies.
package otp

import (
	"context"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

var (
	// ErrInvalidCode indicates the supplied code does not match the most
	// recently sent one. Recoverable by re-prompting.
	ErrInvalidCode = apperrors.New(apperrors.CodeAuthInvalidCode, "one-time code is invalid")
	// ErrCodeExpired indicates the most recent code passed its validity
	// window. Recoverable by re-sending.
	ErrCodeExpired = apperrors.New(apperrors.CodeAuthCodeExpired, "one-time code has expired")
)

// Handler drives the send-then-verify OTP protocol against the backend.
type Handler struct {
	api *httpapi.Client
}

// New creates the OTP handler.
func New(api *httpapi.Client) *Handler {
	return &Handler{api: api}
}

type sendRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phoneNumber,omitempty"`
}

// Send triggers delivery of a one-time code to the destination in args.
//
// Sending is idempotent under repeated calls: the backend re-sends without
// invalidating a prior unexpired code, so double-tapped buttons do not lock
// the user out.
func (h *Handler) Send(ctx context.Context, args auth.Args) error {
	request, err := destination(args)
	if err != nil {
		return err
	}
	if err := h.api.Post(ctx, "/auth/otp", "", request, nil); err != nil {
		return fmt.Errorf("send one-time code: %w", err)
	}
	return nil
}

type verifyRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phoneNumber,omitempty"`
	Code  string `json:"code"`
}

// Authenticate validates the supplied code against the most recently sent
// one and returns the session token. Implements auth.Handler.
func (h *Handler) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	request, err := destination(args)
	if err != nil {
		return auth.StoredToken{}, err
	}
	if args.Code == "" {
		return auth.StoredToken{}, fmt.Errorf("one-time code is required")
	}

	var token auth.StoredToken
	err = h.api.Post(ctx, "/auth/otp/verify", "", verifyRequest{
		Email: request.Email,
		Phone: request.Phone,
		Code:  args.Code,
	}, &token)
	if err != nil {
		return auth.StoredToken{}, fmt.Errorf("verify one-time code: %w", err)
	}
	return token, nil
}

func destination(args auth.Args) (sendRequest, error) {
	switch args.Strategy {
	case auth.StrategyEmail:
		if args.Email == "" {
			return sendRequest{}, fmt.Errorf("email strategy requires an email address")
		}
		return sendRequest{Email: args.Email}, nil
	case auth.StrategyPhone:
		if args.Phone == "" {
			return sendRequest{}, fmt.Errorf("phone strategy requires a phone number")
		}
		return sendRequest{Phone: args.Phone}, nil
	}
	return sendRequest{}, fmt.Errorf("strategy %q is not a one-time-code strategy", args.Strategy)
}
