// Package config loads SDK configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Load populates a config struct of type T from environment variables,
// applying any envDefault tags for unset variables.
func Load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
