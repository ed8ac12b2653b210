package passkey

import (
	"github.com/keystrand/keystrand-go/internal/platform/config"
)

// RelyingParty identifies the WebAuthn relying party a credential binds to.
type RelyingParty struct {
	ID   string
	Name string
}

// Config controls default relying-party settings.
type Config struct {
	RPDisplayName string `env:"KEYSTRAND_PASSKEY_RP_DISPLAY_NAME" envDefault:"Keystrand"`
	RPID          string `env:"KEYSTRAND_PASSKEY_RP_ID"           envDefault:"localhost"`
}

// LoadConfigFromEnv returns passkey configuration with defaults.
func LoadConfigFromEnv() Config {
	cfg, err := config.Load[Config]()
	if err != nil {
		return Config{RPDisplayName: "Keystrand", RPID: "localhost"}
	}
	if cfg.RPDisplayName == "" {
		cfg.RPDisplayName = "Keystrand"
	}
	if cfg.RPID == "" {
		cfg.RPID = "localhost"
	}
	return cfg
}

// ResolveRelyingParty picks the relying party for a ceremony. An explicit
// domain override wins over configured defaults; it exists so one logical
// application spanning several origins can share credentials.
func ResolveRelyingParty(cfg Config, domainOverride string) RelyingParty {
	if domainOverride != "" {
		return RelyingParty{ID: domainOverride, Name: domainOverride}
	}
	return RelyingParty{ID: cfg.RPID, Name: cfg.RPDisplayName}
}
