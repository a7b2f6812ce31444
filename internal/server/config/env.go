package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from the environment. A .env file in the
// working directory is loaded first when present; a missing file is not an
// error. Variables already set in the process environment win over .env
// (godotenv never overrides existing values).
func parseEnv(config *Config) error {
	_ = godotenv.Load()
	return env.Parse(config)
}
