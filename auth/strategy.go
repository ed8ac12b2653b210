package auth

// Strategy is a closed-set tag selecting one concrete authentication method.
type Strategy string

const (
	StrategyEmail                  Strategy = "email"
	StrategyPhone                  Strategy = "phone"
	StrategyJWT                    Strategy = "jwt"
	StrategyPasskey                Strategy = "passkey"
	StrategyAuthEndpoint           Strategy = "auth_endpoint"
	StrategyFrameEmailVerification Strategy = "iframe_email_verification"
	StrategyFrame                  Strategy = "iframe"
	StrategyApple                  Strategy = "apple"
	StrategyFacebook               Strategy = "facebook"
	StrategyGoogle                 Strategy = "google"
	StrategyTelegram               Strategy = "telegram"
	StrategyFarcaster              Strategy = "farcaster"
	StrategyLine                   Strategy = "line"
	StrategyX                      Strategy = "x"
	StrategyCoinbase               Strategy = "coinbase"
	StrategyDiscord                Strategy = "discord"
	StrategyGuest                  Strategy = "guest"
	StrategyWallet                 Strategy = "wallet"
)

var knownStrategies = map[Strategy]bool{
	StrategyEmail:                  true,
	StrategyPhone:                  true,
	StrategyJWT:                    true,
	StrategyPasskey:                true,
	StrategyAuthEndpoint:           true,
	StrategyFrameEmailVerification: true,
	StrategyFrame:                  true,
	StrategyApple:                  true,
	StrategyFacebook:               true,
	StrategyGoogle:                 true,
	StrategyTelegram:               true,
	StrategyFarcaster:              true,
	StrategyLine:                   true,
	StrategyX:                      true,
	StrategyCoinbase:               true,
	StrategyDiscord:                true,
	StrategyGuest:                  true,
	StrategyWallet:                 true,
}

var socialStrategies = map[Strategy]bool{
	StrategyApple:     true,
	StrategyFacebook:  true,
	StrategyGoogle:    true,
	StrategyTelegram:  true,
	StrategyFarcaster: true,
	StrategyLine:      true,
	StrategyX:         true,
	StrategyCoinbase:  true,
	StrategyDiscord:   true,
}

// Known reports whether the tag belongs to the supported strategy set.
// The set is data-driven at the SDK boundary, so membership is a runtime
// check even though dispatch inside the connector is exhaustive.
func (s Strategy) Known() bool {
	return knownStrategies[s]
}

// Social reports whether the strategy is a federated social login.
func (s Strategy) Social() bool {
	return socialStrategies[s]
}

// TwoStep reports whether the strategy uses the send-then-verify OTP shape.
func (s Strategy) TwoStep() bool {
	return s == StrategyEmail || s == StrategyPhone
}
