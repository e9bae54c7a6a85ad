package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"hitstory/internal/app"
)

type GameConfig struct {
	DefaultTargetScore int      `json:"default_target_score"`
	MaxPlayers         int      `json:"max_players"`
	Colors             []string `json:"colors"`
	// DefaultSourceID is dealt from when a start request names no source.
	DefaultSourceID string `json:"default_source_id"`
	SkipCost        int    `json:"skip_cost"`
	AutoPlaceCost   int    `json:"auto_place_cost"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ParseGameConfig decodes and validates a game config document.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.DefaultTargetScore < 0 || c.MaxPlayers < 0 || c.SkipCost < 0 || c.AutoPlaceCost < 0 {
		return nil, fmt.Errorf("game config: numeric settings must not be negative")
	}
	if c.MaxPlayers > 0 && len(c.Colors) > 0 && len(c.Colors) < c.MaxPlayers {
		return nil, fmt.Errorf("game config: %d colors for %d players", len(c.Colors), c.MaxPlayers)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// Rules converts the config into table rules. A nil config yields the defaults.
func (c *GameConfig) Rules() app.Rules {
	if c == nil {
		return app.DefaultRules()
	}
	return app.Rules{
		MaxPlayers:         c.MaxPlayers,
		Palette:            append([]string(nil), c.Colors...),
		DefaultTargetScore: c.DefaultTargetScore,
		SkipCost:           c.SkipCost,
		AutoPlaceCost:      c.AutoPlaceCost,
	}
}

// SourceOr returns sourceID, or the configured default when it is empty.
func (c *GameConfig) SourceOr(sourceID string) string {
	if sourceID != "" || c == nil {
		return sourceID
	}
	return c.DefaultSourceID
}
