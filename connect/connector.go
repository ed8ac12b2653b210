// Package connect provides the top-level connector that drives every login
// strategy through one state machine: authenticate, persist the session
// token, migrate legacy custody when needed, and initialize the wallet
// backend.
package connect

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/keystrand/keystrand-go/auth"
	"github.com/keystrand/keystrand-go/auth/custom"
	"github.com/keystrand/keystrand-go/auth/frame"
	"github.com/keystrand/keystrand-go/auth/guest"
	"github.com/keystrand/keystrand-go/auth/oauthflow"
	"github.com/keystrand/keystrand-go/auth/otp"
	"github.com/keystrand/keystrand-go/auth/passkey"
	"github.com/keystrand/keystrand-go/auth/siwe"
	"github.com/keystrand/keystrand-go/client"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
	"github.com/keystrand/keystrand-go/tokenstore"
	"github.com/keystrand/keystrand-go/transport"
	"github.com/keystrand/keystrand-go/wallet"
)

var (
	// ErrNoSession indicates no session token exists to act on.
	ErrNoSession = apperrors.New(apperrors.CodeSessionMissing, "no session token found")
	// ErrWalletNotInitialized indicates a wallet-dependent call before any
	// successful connect.
	ErrWalletNotInitialized = apperrors.New(apperrors.CodeWalletNotInitialized, "wallet not initialized")
	// ErrMigrationFailed indicates the one-shot shard-to-enclave migration
	// did not complete; the login attempt as a whole fails.
	ErrMigrationFailed = apperrors.New(apperrors.CodeWalletMigrationFailed,
		"failed to migrate sharded wallet to enclave custody")
)

var tracer = otel.Tracer("github.com/keystrand/keystrand-go/connect")

// LoggedInUser is the fully initialized result of a successful connect.
type LoggedInUser struct {
	Status      auth.UserStatus
	AuthDetails auth.AuthDetails
	Address     string
	Account     wallet.Account
}

// Options configures a Connector.
type Options struct {
	// Identity is required and immutable for the connector's lifetime.
	Identity client.Identity

	// TokenStore persists the session token. Defaults to an in-memory store;
	// embedders wanting sessions that survive restarts supply the SQLite
	// store.
	TokenStore tokenstore.Store

	// Channel reaches the frame runtime. Defaults to the HTTP bridge against
	// the configured backend.
	Channel transport.Channel

	// API overrides backend endpoint configuration. The zero value loads
	// from the environment.
	API httpapi.Config

	// PasskeyClient performs platform passkey ceremonies; required only for
	// the passkey strategy.
	PasskeyClient passkey.Client

	// PasskeyDomain pins the passkey relying party for applications spanning
	// multiple origins. Empty means configured defaults.
	PasskeyDomain string

	// Surface opens social login windows; required only for the federated
	// strategies in popup or window mode.
	Surface oauthflow.Surface

	// GuestSessionID pins the guest account across restarts when the
	// embedder persists it. Empty mints a fresh one per connector.
	GuestSessionID string

	// OnAuthSuccess, when set, observes every accepted login before wallet
	// initialization proceeds.
	OnAuthSuccess func(ctx context.Context, result auth.AuthResult) error
}

// Connector orchestrates authentication and wallet initialization for one
// application identity.
//
// The in-memory wallet reference is explicit session state owned by the
// connector, guarded by a mutex so concurrent Connect/Logout calls are
// serialized rather than racing on the token store. Cross-tab consistency
// stays a caller concern.
type Connector struct {
	identity client.Identity
	store    tokenstore.Store
	channel  transport.Channel
	api      *httpapi.Client

	otpHandler     *otp.Handler
	oauthHandler   *oauthflow.Handler
	passkeyHandler *passkey.Handler
	siweHandler    *siwe.Handler
	guestHandler   *guest.Handler
	customHandler  *custom.Handler
	frameHandler   *frame.Handler

	onAuthSuccess func(ctx context.Context, result auth.AuthResult) error

	mu     sync.Mutex
	wallet wallet.Wallet
}

// New creates a connector for the given identity.
func New(opts Options) (*Connector, error) {
	if opts.Identity.ClientID() == "" {
		return nil, fmt.Errorf("connector requires an identity from client.NewIdentity")
	}

	apiConfig := opts.API
	if apiConfig.BaseURL == "" {
		apiConfig = httpapi.LoadConfigFromEnv()
	}

	var apiOpts []httpapi.Option
	if eco := opts.Identity.Ecosystem(); eco != nil {
		apiOpts = append(apiOpts, httpapi.WithEcosystem(eco.ID, eco.PartnerID))
	}
	api := httpapi.New(apiConfig, opts.Identity.ClientID(), apiOpts...)

	channel := opts.Channel
	if channel == nil {
		channel = transport.NewHTTPChannel(apiConfig.BaseURL, opts.Identity.ClientID(), nil)
	}

	store := opts.TokenStore
	if store == nil {
		store = tokenstore.NewMemory()
	}

	c := &Connector{
		identity:      opts.Identity,
		store:         store,
		channel:       channel,
		api:           api,
		onAuthSuccess: opts.OnAuthSuccess,
	}
	c.otpHandler = otp.New(api)
	c.oauthHandler = oauthflow.New(api, opts.Surface, 0)
	c.passkeyHandler = passkey.New(api, opts.PasskeyClient, passkey.LoadConfigFromEnv(), opts.PasskeyDomain)
	c.siweHandler = siwe.New(api)
	c.guestHandler = guest.New(api, opts.GuestSessionID)
	c.customHandler = custom.New(api)
	c.frameHandler = frame.New(channel)
	return c, nil
}

// Identity returns the connector's immutable application identity.
func (c *Connector) Identity() client.Identity {
	return c.identity
}

// PreAuthenticate triggers delivery of a one-time code for the two-step
// strategies. Repeated calls re-send without invalidating a prior unexpired
// code.
func (c *Connector) PreAuthenticate(ctx context.Context, args auth.Args) error {
	if !args.Strategy.TwoStep() {
		return fmt.Errorf("strategy %q has no pre-authentication step", args.Strategy)
	}
	return c.otpHandler.Send(ctx, args)
}

// Authenticate resolves the matching strategy handler and returns a session
// token without constructing a wallet and without touching the token store.
func (c *Connector) Authenticate(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	ctx, span := tracer.Start(ctx, "connect.Authenticate",
		trace.WithAttributes(attribute.String("auth.strategy", string(args.Strategy))))
	defer span.End()

	if err := args.Validate(); err != nil {
		return auth.StoredToken{}, err
	}
	return c.dispatch(ctx, args)
}

// dispatch is statically exhaustive over the strategy set, but the final
// branch still faults: the tag arrives as data at the SDK boundary.
func (c *Connector) dispatch(ctx context.Context, args auth.Args) (auth.StoredToken, error) {
	switch {
	case args.Strategy.TwoStep():
		return c.otpHandler.Authenticate(ctx, args)
	case args.Strategy == auth.StrategyJWT, args.Strategy == auth.StrategyAuthEndpoint:
		return c.customHandler.Authenticate(ctx, args)
	case args.Strategy == auth.StrategyPasskey:
		return c.passkeyHandler.Authenticate(ctx, args)
	case args.Strategy == auth.StrategyFrame, args.Strategy == auth.StrategyFrameEmailVerification:
		return c.frameHandler.Authenticate(ctx, args)
	case args.Strategy.Social():
		return c.oauthHandler.Authenticate(ctx, args)
	case args.Strategy == auth.StrategyGuest:
		return c.guestHandler.Authenticate(ctx, args)
	case args.Strategy == auth.StrategyWallet:
		return c.siweHandler.Authenticate(ctx, args)
	}
	return auth.StoredToken{}, apperrors.WithMetadata(apperrors.CodeAuthUnknownStrategy,
		fmt.Sprintf("unhandled authentication strategy %q", args.Strategy),
		map[string]string{"strategy": string(args.Strategy)})
}

// Connect authenticates the user and instantiates their wallet using the
// resulting session token.
func (c *Connector) Connect(ctx context.Context, args auth.Args) (*LoggedInUser, error) {
	ctx, span := tracer.Start(ctx, "connect.Connect",
		trace.WithAttributes(attribute.String("auth.strategy", string(args.Strategy))))
	defer span.End()

	if err := args.Validate(); err != nil {
		return nil, err
	}
	token, err := c.dispatch(ctx, args)
	if err != nil {
		return nil, err
	}
	return c.login(ctx, token)
}

// LoginWithSessionToken runs the login pipeline with a token obtained out of
// band, for embedders that complete a flow elsewhere (redirect returns,
// server-issued tokens).
func (c *Connector) LoginWithSessionToken(ctx context.Context, token auth.StoredToken) (*LoggedInUser, error) {
	ctx, span := tracer.Start(ctx, "connect.LoginWithSessionToken")
	defer span.End()

	if token.CookieString == "" {
		return nil, ErrNoSession
	}
	return c.login(ctx, token)
}

// AuthenticateWithRedirect starts a full-page social redirect flow and
// returns the URL to navigate to. The flow completes out of band; the
// redirect target exchanges its result through LoginWithSessionToken.
func (c *Connector) AuthenticateWithRedirect(strategy auth.Strategy, mode auth.OAuthMode, redirectURL string) (string, error) {
	return c.oauthHandler.BeginRedirect(strategy, mode, redirectURL)
}

// GetUser reports the current user status, lazily initializing the wallet
// from a stored token when one exists. Repeated calls with no intervening
// authentication are idempotent and never re-trigger migration.
func (c *Connector) GetUser(ctx context.Context) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "connect.GetUser")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wallet == nil {
		raw, err := c.store.Read(ctx)
		if errors.Is(err, tokenstore.ErrNotFound) {
			return auth.User{Status: auth.StatusLoggedOut}, nil
		}
		if err != nil {
			return auth.User{}, fmt.Errorf("read stored session: %w", err)
		}
		token, err := auth.DecodeStoredToken(raw)
		if err != nil {
			return auth.User{}, fmt.Errorf("decode stored session: %w", err)
		}
		if _, _, err := c.initializeWalletLocked(ctx, &token); err != nil {
			if errors.Is(err, wallet.ErrNotProvisioned) {
				// Logged in, but no wallet exists yet; not an error for a
				// status query.
				return auth.User{
					Status:      auth.StatusLoggedInWalletUninitialized,
					AuthDetails: token.AuthDetails,
				}, nil
			}
			return auth.User{}, err
		}
	}
	return c.wallet.UserStatus(ctx)
}

// GetAccount returns the signing account of the initialized wallet.
func (c *Connector) GetAccount(ctx context.Context) (wallet.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wallet == nil {
		return nil, ErrWalletNotInitialized
	}
	return c.wallet.Account(ctx)
}

// Logout clears the session. The remote invalidation calls, one to the
// backend and one to the frame runtime, are best effort; local state is
// always cleared even when the remote session is already expired or
// unreachable.
func (c *Connector) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "connect.Logout")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if raw, err := c.store.Read(ctx); err == nil {
		if token, decodeErr := auth.DecodeStoredToken(raw); decodeErr == nil {
			if remoteErr := c.api.Post(ctx, "/auth/logout", token.CookieString, nil, nil); remoteErr != nil {
				log.Printf("remote session invalidation: %v", remoteErr)
			}
		}
		if frameErr := c.channel.Call(ctx, transport.ProcedureLogout, nil, nil); frameErr != nil {
			log.Printf("frame session invalidation: %v", frameErr)
		}
	}

	c.wallet = nil
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
