package oauthflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

type fakeWindow struct {
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{closed: make(chan struct{})}
}

func (w *fakeWindow) Closed() <-chan struct{} { return w.closed }

func (w *fakeWindow) Close() error {
	w.closeOnce.Do(func() { close(w.closed) })
	return nil
}

type fakeSurface struct {
	window  *fakeWindow
	openURL string
}

func (s *fakeSurface) Open(ctx context.Context, loginURL string) (Window, error) {
	s.openURL = loginURL
	return s.window, nil
}

// socialBackend completes the flow after a configurable number of pending
// polls.
func socialBackend(t *testing.T, pendingPolls int) http.HandlerFunc {
	polls := 0
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/auth/social/result") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("nonce") == "" {
			t.Error("missing nonce")
		}
		polls++
		if polls <= pendingPolls {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"pending"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(auth.StoredToken{
			CookieString: "cookie-social",
			AuthDetails:  auth.AuthDetails{UserWalletID: "uw-social", WalletType: auth.WalletTypeEnclave},
		})
	}
}

func newTestHandler(t *testing.T, backend http.HandlerFunc, surface Surface) *Handler {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	api := httpapi.New(httpapi.Config{BaseURL: server.URL, Timeout: time.Second}, "client-1")
	return New(api, surface, 10*time.Millisecond)
}

func TestAuthenticateCompletesAfterPendingPolls(t *testing.T) {
	surface := &fakeSurface{window: newFakeWindow()}
	handler := newTestHandler(t, socialBackend(t, 2), surface)

	token, err := handler.Authenticate(context.Background(), auth.Args{
		Strategy: auth.StrategyGoogle,
		Mode:     auth.OAuthModePopup,
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token.CookieString != "cookie-social" {
		t.Fatalf("unexpected token %+v", token)
	}
	if !strings.Contains(surface.openURL, "/auth/social/google?") {
		t.Fatalf("unexpected login url %q", surface.openURL)
	}
	if !strings.Contains(surface.openURL, "mode=popup") {
		t.Fatalf("missing mode in login url %q", surface.openURL)
	}
}

func TestAuthenticateWindowCloseCancels(t *testing.T) {
	surface := &fakeSurface{window: newFakeWindow()}
	// Backend never completes; only the window close ends the wait.
	handler := newTestHandler(t, socialBackend(t, 1<<30), surface)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = surface.window.Close()
	}()

	_, err := handler.Authenticate(context.Background(), auth.Args{Strategy: auth.StrategyDiscord})
	if !errors.Is(err, auth.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAuthenticateContextCancelResolves(t *testing.T) {
	surface := &fakeSurface{window: newFakeWindow()}
	handler := newTestHandler(t, socialBackend(t, 1<<30), surface)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := handler.Authenticate(ctx, auth.Args{Strategy: auth.StrategyApple})
	if !errors.Is(err, auth.ErrCancelled) {
		t.Fatalf("expected cancellation fault, got %v", err)
	}
}

func TestAuthenticateRejectsNonSocialStrategy(t *testing.T) {
	handler := newTestHandler(t, socialBackend(t, 0), &fakeSurface{window: newFakeWindow()})
	if _, err := handler.Authenticate(context.Background(), auth.Args{Strategy: auth.StrategyEmail}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBeginRedirectBuildsURL(t *testing.T) {
	handler := newTestHandler(t, socialBackend(t, 0), nil)

	loginURL, err := handler.BeginRedirect(auth.StrategyFarcaster, "", "https://app.example/return")
	if err != nil {
		t.Fatalf("begin redirect: %v", err)
	}
	if !strings.Contains(loginURL, "/auth/social/farcaster?") {
		t.Fatalf("unexpected url %q", loginURL)
	}
	if !strings.Contains(loginURL, "mode=redirect") {
		t.Fatalf("expected redirect mode default, got %q", loginURL)
	}
	if !strings.Contains(loginURL, "redirectUrl=") {
		t.Fatalf("missing redirect url, got %q", loginURL)
	}

	if _, err := handler.BeginRedirect(auth.StrategyGuest, "", ""); err == nil {
		t.Fatal("expected error for non-social strategy")
	}
}
