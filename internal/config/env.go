package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration shared by the CLI and the Nakama plugin.
type Env struct {
	DBPath            string `env:"HITSTORY_DB_PATH" envDefault:"hitstory.db"`
	GameConfigPath    string `env:"HITSTORY_GAME_CONFIG"`
	BotIdentitiesPath string `env:"HITSTORY_BOT_IDENTITIES"`
	SnapshotKey       string `env:"HITSTORY_SNAPSHOT_KEY" envDefault:"hitstory_game_state"`
	// Seed of 0 means seed from the clock.
	Seed     int64  `env:"HITSTORY_SEED"`
	LogLevel string `env:"HITSTORY_LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"HITSTORY_LOG_DEV"`

	SpotifyClientID    string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyRedirectURI string `env:"SPOTIFY_REDIRECT_URI" envDefault:"http://127.0.0.1:8888/callback"`
	StateSecret        string `env:"HITSTORY_STATE_SECRET"`
}

// SpotifyEnabled reports whether enough is configured to offer Spotify login.
func (e Env) SpotifyEnabled() bool {
	return e.SpotifyClientID != "" && e.StateSecret != ""
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvMap loads configuration from vars instead of the process environment.
// The Nakama runtime hands plugin settings over this way.
func ParseEnvMap(target any, vars map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
