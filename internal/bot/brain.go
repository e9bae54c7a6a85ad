package bot

import (
	"fmt"
	"strings"

	"hitstory/internal/app"
	"hitstory/internal/domain"
)

// BotLevel selects how well a bot knows its music.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelGood
	BotLevelGod
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelRandom:
		return "random"
	case BotLevelGood:
		return "good"
	case BotLevelGod:
		return "god"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a level name to a BotLevel.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return BotLevelRandom, nil
	case "good":
		return BotLevelGood, nil
	case "god":
		return BotLevelGod, nil
	}
	return 0, fmt.Errorf("unknown bot level: %q", s)
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// Shortcut returns app.SkipCard, app.AutoPlace or nil before the active seat guesses.
	Shortcut(state *domain.GameState) app.Action
	// Guess picks a gap in timeline for card.
	Guess(timeline []domain.Card, card domain.Card) int
	// Challenge reports whether playerID opts in against the pending guess.
	Challenge(state *domain.GameState, playerID string) bool
	// Bet picks a free gap for playerID, or false to pass.
	Bet(state *domain.GameState, playerID string) (int, bool)
}
