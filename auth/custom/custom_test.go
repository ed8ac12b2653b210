package custom

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

func signTestJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "partner-user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return signed
}

func newTestHandler(t *testing.T, handlerFunc http.HandlerFunc) *Handler {
	t.Helper()
	server := httptest.NewServer(handlerFunc)
	t.Cleanup(server.Close)
	return New(httpapi.New(httpapi.Config{BaseURL: server.URL, Timeout: time.Second}, "client-1"))
}

func TestJWTExchange(t *testing.T) {
	rawJWT := signTestJWT(t, time.Now().Add(time.Hour))
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/jwt" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["jwt"] != rawJWT {
			t.Errorf("jwt not forwarded")
		}
		if body["encryptionKey"] != "enc-key" {
			t.Errorf("encryption key not forwarded")
		}
		_ = json.NewEncoder(w).Encode(auth.StoredToken{
			CookieString: "cookie-jwt",
			AuthDetails:  auth.AuthDetails{UserWalletID: "uw-jwt", WalletType: auth.WalletTypeEnclave},
		})
	})

	token, err := handler.Authenticate(context.Background(), auth.Args{
		Strategy:      auth.StrategyJWT,
		JWT:           rawJWT,
		EncryptionKey: "enc-key",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token.CookieString != "cookie-jwt" {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestExpiredJWTRejectedLocally(t *testing.T) {
	rawJWT := signTestJWT(t, time.Now().Add(-time.Minute))
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("expired jwt must not reach the backend")
	})

	_, err := handler.Authenticate(context.Background(), auth.Args{
		Strategy: auth.StrategyJWT,
		JWT:      rawJWT,
	})
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestMalformedJWTRejected(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("malformed jwt must not reach the backend")
	})
	_, err := handler.Authenticate(context.Background(), auth.Args{
		Strategy: auth.StrategyJWT,
		JWT:      "not.a.jwt",
	})
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAuthEndpointExchange(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/custom-endpoint" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["payload"] != `{"uid":"u-1"}` {
			t.Errorf("payload not forwarded, got %q", body["payload"])
		}
		_ = json.NewEncoder(w).Encode(auth.StoredToken{
			CookieString: "cookie-endpoint",
			AuthDetails:  auth.AuthDetails{UserWalletID: "uw-endpoint", WalletType: auth.WalletTypeSharded},
		})
	})

	token, err := handler.Authenticate(context.Background(), auth.Args{
		Strategy: auth.StrategyAuthEndpoint,
		Payload:  `{"uid":"u-1"}`,
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token.AuthDetails.WalletType != auth.WalletTypeSharded {
		t.Fatalf("unexpected wallet type %q", token.AuthDetails.WalletType)
	}
}

func TestRejectsForeignStrategy(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := handler.Authenticate(context.Background(), auth.Args{Strategy: auth.StrategyGuest}); err == nil {
		t.Fatal("expected error")
	}
}
