package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment through the env and
// envPrefix tags of [StructuredConfig]. Variables that are set to an empty
// or blank value are dropped first, so an exported but empty
// BITWARDEN_EMAIL behaves like an unset one.
func parseEnv(cfg *StructuredConfig) error {
	vars := env.ToMap(os.Environ())
	maps.DeleteFunc(vars, func(_, v string) bool {
		return strings.TrimSpace(v) == ""
	})

	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
