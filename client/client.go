// Package client defines the application identity every SDK call is scoped by.
package client

import (
	"strings"

	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
)

var (
	// ErrEmptyClientID indicates a missing client id.
	ErrEmptyClientID = apperrors.New(apperrors.CodeClientIDEmpty, "client id is required")
	// ErrLegacyClientID indicates a client id from the retired identity scheme.
	ErrLegacyClientID = apperrors.New(apperrors.CodeClientLegacyID,
		"legacy client id detected; use the client id from the dashboard settings page")
)

// Ecosystem identifies a shared wallet scope spanning multiple applications
// under one partner.
type Ecosystem struct {
	ID        string
	PartnerID string
}

// Identity identifies the calling application. It is immutable for the
// lifetime of a connector.
type Identity struct {
	clientID  string
	ecosystem *Ecosystem
}

// NewIdentity validates and creates an application identity.
//
// Identifiers from the retired scheme were 36-character hyphenated strings;
// they are rejected outright because the wallet backend no longer accepts
// them.
func NewIdentity(clientID string, ecosystem *Ecosystem) (Identity, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Identity{}, ErrEmptyClientID
	}
	if isLegacyClientID(clientID) {
		return Identity{}, ErrLegacyClientID
	}
	if ecosystem != nil {
		scoped := *ecosystem
		return Identity{clientID: clientID, ecosystem: &scoped}, nil
	}
	return Identity{clientID: clientID}, nil
}

func isLegacyClientID(clientID string) bool {
	return len(clientID) == 36 && strings.Contains(clientID, "-")
}

// ClientID returns the application client id.
func (i Identity) ClientID() string {
	return i.clientID
}

// Ecosystem returns the ecosystem scope, or nil when the identity is not
// ecosystem-scoped.
func (i Identity) Ecosystem() *Ecosystem {
	if i.ecosystem == nil {
		return nil
	}
	scoped := *i.ecosystem
	return &scoped
}

// Scope returns the storage key for per-identity persisted state: the
// ecosystem id when present, otherwise the client id.
func (i Identity) Scope() string {
	if i.ecosystem != nil && i.ecosystem.ID != "" {
		return i.ecosystem.ID
	}
	return i.clientID
}
