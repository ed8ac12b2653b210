// Package tokenstore persists the durable session token across page loads
// and process restarts.
//
// A store is scoped at construction time: by ecosystem id when the identity
// is ecosystem-scoped, otherwise by client id. Writes overwrite, reads are
// on demand, and no cross-instance synchronization is performed; a second
// reader observes a logout only on its next read.
package tokenstore

import (
	"context"
	"sync"

	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
)

// ErrNotFound indicates no token is stored for the scope.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "no session token stored")

// Store persists the current session's auth token.
type Store interface {
	// Read returns the stored token, or ErrNotFound when absent.
	Read(ctx context.Context) (string, error)
	// Write stores the token, superseding any previous one.
	Write(ctx context.Context, token string) error
	// Clear removes the stored token. Clearing an empty store succeeds.
	Clear(ctx context.Context) error
}

// Memory is an in-process Store for tests and ephemeral embedders.
type Memory struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Read implements Store.
func (m *Memory) Read(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ErrNotFound
	}
	return m.token, nil
}

// Write implements Store.
func (m *Memory) Write(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
	return nil
}
