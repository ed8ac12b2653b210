// Package auth defines the authentication boundary of the SDK.
//
// It owns the closed set of login strategies, the argument record each
// strategy accepts, and the normalized StoredToken every strategy handler
// produces. The connector in package connect dispatches over these types;
// the per-strategy subpackages (otp, oauthflow, passkey, siwe, guest,
// custom, frame) implement the handlers.
package auth
