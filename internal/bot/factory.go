package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelRandom, BotLevelGood, BotLevelGod:
		return &TunedBot{rng: rng, tuning: ForLevel(level)}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
