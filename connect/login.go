package connect

import (
	"context"
	"errors"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/tokenstore"
	"github.com/keystrand/keystrand-go/transport"
	"github.com/keystrand/keystrand-go/wallet"
)

// login runs the post-authentication pipeline in strict order: token store
// write, conditional custody migration, wallet initialization, post-setup.
// On any failure the token store and the in-memory wallet are restored to
// their pre-call snapshots so a failed connect leaves the connector exactly
// as it was.
func (c *Connector) login(ctx context.Context, token auth.StoredToken) (user *LoggedInUser, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, readErr := c.store.Read(ctx)
	hadPrevious := readErr == nil
	if readErr != nil && !errors.Is(readErr, tokenstore.ErrNotFound) {
		return nil, fmt.Errorf("snapshot stored session: %w", readErr)
	}
	previousWallet := c.wallet

	encoded, err := token.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode session token: %w", err)
	}
	if err := c.store.Write(ctx, encoded); err != nil {
		return nil, fmt.Errorf("persist session token: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		c.wallet = previousWallet
		if hadPrevious {
			_ = c.store.Write(ctx, previous)
		} else {
			_ = c.store.Clear(ctx)
		}
	}()

	if err := c.migrateIfSharded(ctx, token); err != nil {
		return nil, err
	}

	w, details, err := c.initializeWalletLocked(ctx, &token)
	if err != nil {
		return nil, err
	}

	if c.onAuthSuccess != nil {
		if err := c.onAuthSuccess(ctx, auth.AuthResult{StoredToken: token, WalletDetails: details}); err != nil {
			return nil, fmt.Errorf("auth success hook: %w", err)
		}
	}

	if err := w.PostSetup(ctx, wallet.SetupDetails{
		Details:      details,
		AuthToken:    token.CookieString,
		WalletUserID: token.AuthDetails.UserWalletID,
	}); err != nil {
		return nil, fmt.Errorf("wallet post-setup: %w", err)
	}

	account, err := w.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	return &LoggedInUser{
		Status:      auth.StatusLoggedInWalletInitialized,
		AuthDetails: token.AuthDetails,
		Address:     account.Address(),
		Account:     account,
	}, nil
}

// migrateIfSharded upgrades a legacy sharded wallet to enclave custody.
// The step runs only from the login pipeline, only for ecosystem-scoped
// connectors, and exactly once per login. A negative or failed response is
// fatal for the whole login attempt; there is no silent fallback to the
// legacy backend.
func (c *Connector) migrateIfSharded(ctx context.Context, token auth.StoredToken) error {
	if token.AuthDetails.WalletType != auth.WalletTypeSharded {
		return nil
	}
	if c.identity.Ecosystem() == nil {
		return nil
	}

	var migrated bool
	err := c.channel.Call(ctx, transport.ProcedureMigrateFromShardToEnclave, map[string]any{
		"storedToken": token,
	}, &migrated)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeWalletMigrationFailed,
			"failed to migrate sharded wallet to enclave custody", err)
	}
	if !migrated {
		return ErrMigrationFailed
	}
	return nil
}

// initializeWalletLocked selects and constructs the wallet backend for the
// effective session token. The caller must hold c.mu.
//
// The backend choice binds to server-declared state: the first wallet's
// type from the inventory query, never local configuration. There is no
// automatic retry on transient failure; callers re-invoke.
func (c *Connector) initializeWalletLocked(ctx context.Context, fresh *auth.StoredToken) (wallet.Wallet, auth.WalletDetails, error) {
	var token auth.StoredToken
	if fresh != nil {
		token = *fresh
	} else {
		raw, err := c.store.Read(ctx)
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil, auth.WalletDetails{}, ErrNoSession
		}
		if err != nil {
			return nil, auth.WalletDetails{}, fmt.Errorf("read stored session: %w", err)
		}
		token, err = auth.DecodeStoredToken(raw)
		if err != nil {
			return nil, auth.WalletDetails{}, fmt.Errorf("decode stored session: %w", err)
		}
	}

	inventory, err := wallet.QueryInventory(ctx, c.api, token.CookieString)
	if err != nil {
		return nil, auth.WalletDetails{}, err
	}
	if inventory == nil {
		return nil, auth.WalletDetails{}, ErrNoSession
	}
	if len(inventory.Wallets) == 0 {
		return nil, auth.WalletDetails{}, wallet.ErrNotProvisioned
	}

	first := inventory.Wallets[0]
	var backend wallet.Wallet
	if first.Type == auth.WalletTypeEnclave {
		backend = wallet.NewEnclave(c.api, first.Address, token)
	} else {
		backend = wallet.NewFrame(c.channel, c.identity, token)
	}

	c.wallet = backend
	return backend, auth.WalletDetails{Address: first.Address}, nil
}
