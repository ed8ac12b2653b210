package httpapi

import (
	"time"

	"github.com/keystrand/keystrand-go/internal/platform/config"
)

// DefaultBaseURL is the production wallet backend.
const DefaultBaseURL = "https://wallet.keystrand.io"

// Config controls backend endpoint selection and HTTP timing.
type Config struct {
	BaseURL string        `env:"KEYSTRAND_API_BASE_URL" envDefault:"https://wallet.keystrand.io"`
	Timeout time.Duration `env:"KEYSTRAND_API_TIMEOUT"  envDefault:"30s"`
}

// LoadConfigFromEnv loads backend configuration and applies defensive defaults.
func LoadConfigFromEnv() Config {
	cfg, _ := config.Load[Config]()
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
