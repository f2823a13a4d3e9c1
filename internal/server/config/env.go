package config

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix prefixes every environment variable read by the server.
const EnvPrefix = "GOALKEEPER_"

// parseEnv overlays GOALKEEPER_* environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func parseEnv(config *Config) error {
	_ = godotenv.Load()
	return processEnv(context.Background(), config, envconfig.OsLookuper())
}

func processEnv(ctx context.Context, config *Config, l envconfig.Lookuper) error {
	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   config,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	})
}
