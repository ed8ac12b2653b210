package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/keystrand/keystrand-go/tokenstore"
)

func openTestStore(t *testing.T, scope string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.db")
	store, err := Open(path, scope)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	store := openTestStore(t, "client-1")
	_, err := store.Read(context.Background())
	if !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteReadClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "client-1")

	if err := store.Write(ctx, "token-a"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "token-a" {
		t.Fatalf("expected token-a, got %q", got)
	}

	// A second write supersedes the first.
	if err := store.Write(ctx, "token-b"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = store.Read(ctx)
	if err != nil {
		t.Fatalf("read after overwrite: %v", err)
	}
	if got != "token-b" {
		t.Fatalf("expected token-b, got %q", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}

	// Clearing an empty store succeeds.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear empty: %v", err)
	}
}

func TestScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	first, err := Open(path, "ecosystem.one")
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	defer func() { _ = first.Close() }()
	second, err := Open(path, "ecosystem.two")
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	defer func() { _ = second.Close() }()

	if err := first.Write(ctx, "token-one"); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if _, err := second.Read(ctx); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatalf("expected second scope empty, got %v", err)
	}

	if err := second.Write(ctx, "token-two"); err != nil {
		t.Fatalf("write second: %v", err)
	}
	got, err := first.Read(ctx)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if got != "token-one" {
		t.Fatalf("scope leak: got %q", got)
	}
}

func TestOpenValidatesInput(t *testing.T) {
	if _, err := Open("", "scope"); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "t.db"), "  "); err == nil {
		t.Fatal("expected error for empty scope")
	}
}
