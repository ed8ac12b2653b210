package otp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

// otpBackend emulates the backend's code lifecycle: a send issues a code,
// a re-send keeps the prior unexpired code valid, verification checks the
// supplied code against the most recent ones.
type otpBackend struct {
	codes   []string
	expired map[string]bool
	next    int
}

func (b *otpBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/otp":
			b.next++
			code := b.codes[b.next-1]
			_ = code // delivery happens out of band
			w.WriteHeader(http.StatusNoContent)
		case "/auth/otp/verify":
			var body struct {
				Email string `json:"email"`
				Code  string `json:"code"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode verify body: %v", err)
			}
			for _, code := range b.codes[:b.next] {
				if code != body.Code {
					continue
				}
				if b.expired[code] {
					w.WriteHeader(http.StatusBadRequest)
					_, _ = w.Write([]byte(`{"code":"AUTH_CODE_EXPIRED","message":"code expired"}`))
					return
				}
				_ = json.NewEncoder(w).Encode(auth.StoredToken{
					CookieString: "cookie-otp",
					AuthDetails: auth.AuthDetails{
						UserWalletID: "uw-otp",
						WalletType:   auth.WalletTypeEnclave,
						Email:        body.Email,
					},
				})
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"AUTH_INVALID_CODE","message":"wrong code"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}
}

func newTestHandler(t *testing.T, backend *otpBackend) *Handler {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)
	return New(httpapi.New(httpapi.Config{BaseURL: server.URL, Timeout: time.Second}, "client-1"))
}

func emailArgs(code string) auth.Args {
	return auth.Args{Strategy: auth.StrategyEmail, Email: "u@example.com", Code: code}
}

func TestResendKeepsFirstCodeValid(t *testing.T) {
	backend := &otpBackend{codes: []string{"111111", "222222"}, expired: map[string]bool{}}
	handler := newTestHandler(t, backend)
	ctx := context.Background()

	if err := handler.Send(ctx, emailArgs("")); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := handler.Send(ctx, emailArgs("")); err != nil {
		t.Fatalf("second send: %v", err)
	}

	token, err := handler.Authenticate(ctx, emailArgs("111111"))
	if err != nil {
		t.Fatalf("verify with first code: %v", err)
	}
	if token.AuthDetails.WalletType != auth.WalletTypeEnclave {
		t.Fatalf("wallet type must be set, got %q", token.AuthDetails.WalletType)
	}
	if token.AuthDetails.Email != "u@example.com" {
		t.Fatalf("unexpected email %q", token.AuthDetails.Email)
	}
}

func TestExpiredFirstCodeFailsWithCodeExpired(t *testing.T) {
	backend := &otpBackend{codes: []string{"111111", "222222"}, expired: map[string]bool{"111111": true}}
	handler := newTestHandler(t, backend)
	ctx := context.Background()

	if err := handler.Send(ctx, emailArgs("")); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := handler.Send(ctx, emailArgs("")); err != nil {
		t.Fatalf("second send: %v", err)
	}

	_, err := handler.Authenticate(ctx, emailArgs("111111"))
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestUnknownCodeFailsWithInvalidCode(t *testing.T) {
	backend := &otpBackend{codes: []string{"111111"}, expired: map[string]bool{}}
	handler := newTestHandler(t, backend)
	ctx := context.Background()

	if err := handler.Send(ctx, emailArgs("")); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err := handler.Authenticate(ctx, emailArgs("999999"))
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestAuthenticateRequiresCode(t *testing.T) {
	handler := newTestHandler(t, &otpBackend{codes: []string{"111111"}, expired: map[string]bool{}})
	if _, err := handler.Authenticate(context.Background(), emailArgs("")); err == nil {
		t.Fatal("expected error for missing code")
	}
}

func TestRejectsNonOTPStrategy(t *testing.T) {
	handler := newTestHandler(t, &otpBackend{codes: []string{"111111"}, expired: map[string]bool{}})
	if err := handler.Send(context.Background(), auth.Args{Strategy: auth.StrategyGuest}); err == nil {
		t.Fatal("expected error for non-otp strategy")
	}
}
