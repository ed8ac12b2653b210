package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Client identity errors
	CodeClientLegacyID Code = "CLIENT_LEGACY_ID"
	CodeClientIDEmpty  Code = "CLIENT_ID_EMPTY"

	// Authentication errors
	CodeAuthUnknownStrategy Code = "AUTH_UNKNOWN_STRATEGY"
	CodeAuthCancelled       Code = "AUTH_CANCELLED"
	CodeAuthInvalidCode     Code = "AUTH_INVALID_CODE"
	CodeAuthCodeExpired     Code = "AUTH_CODE_EXPIRED"
	CodeAuthTokenExpired    Code = "AUTH_TOKEN_EXPIRED"
	CodeAuthRejected        Code = "AUTH_REJECTED"

	// Session errors
	CodeSessionMissing Code = "SESSION_MISSING"

	// Wallet errors
	CodeWalletNotInitialized  Code = "WALLET_NOT_INITIALIZED"
	CodeWalletNotProvisioned  Code = "WALLET_NOT_PROVISIONED"
	CodeWalletMigrationFailed Code = "WALLET_MIGRATION_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Transport errors
	CodeTransportFailure Code = "TRANSPORT_FAILURE"
)

// Recoverable reports whether a code describes a condition the caller can
// remedy by re-prompting the user, as opposed to a terminal fault.
func (c Code) Recoverable() bool {
	switch c {
	case CodeAuthInvalidCode, CodeAuthCodeExpired, CodeAuthCancelled:
		return true
	}
	return false
}
