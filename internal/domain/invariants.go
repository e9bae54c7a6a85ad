package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTimelineUnsorted  = errors.New("timeline is not sorted by year")
	ErrNegativeTokens    = errors.New("token balance is negative")
	ErrDuplicateBet      = errors.New("challenger holds more than one bet")
	ErrCursorOutOfRange  = errors.New("challenger cursor exceeds queue length")
	ErrActiveOutOfRange  = errors.New("active player index out of range")
	ErrRankWithoutFinish = errors.New("rank assigned to unfinished player")
)

// Validate checks the invariants every accepted transition must preserve.
func (s *GameState) Validate() error {
	for _, p := range s.Players {
		if !IsSorted(p.Timeline) {
			return fmt.Errorf("player %s: %w", p.ID, ErrTimelineUnsorted)
		}
		if p.Tokens < 0 {
			return fmt.Errorf("player %s: %w", p.ID, ErrNegativeTokens)
		}
		if p.Rank != 0 && !p.HasWon {
			return fmt.Errorf("player %s: %w", p.ID, ErrRankWithoutFinish)
		}
	}
	seen := make(map[string]bool, len(s.Challenges))
	for _, c := range s.Challenges {
		if seen[c.PlayerID] {
			return fmt.Errorf("player %s: %w", c.PlayerID, ErrDuplicateBet)
		}
		seen[c.PlayerID] = true
	}
	if s.CurrentChallengerIndex > len(s.ChallengeQueue) {
		return ErrCursorOutOfRange
	}
	if len(s.Players) > 0 && s.Phase != PhaseSetup {
		if s.ActivePlayerIndex < 0 || s.ActivePlayerIndex >= len(s.Players) {
			return ErrActiveOutOfRange
		}
	}
	return nil
}
