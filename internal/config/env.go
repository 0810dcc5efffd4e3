package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// parseEnv loads ./.env when present (without overriding variables already
// set) and then overlays every WATERKEEPER_* variable. Unset variables leave
// the field alone.
func parseEnv(c *Config) error {
	_ = godotenv.Load()

	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
