package domain

import (
	"maps"
	"slices"
)

// NewGameState returns the empty state a fresh game starts from.
func NewGameState() *GameState {
	return &GameState{
		Players:  []Player{},
		Phase:    PhaseSetup,
		Settings: Settings{TargetScore: DefaultTargetScore},
	}
}

// Clone returns a deep copy so transitions never share memory with the prior state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			p.Timeline = slices.Clone(p.Timeline)
			out.Players[i] = p
		}
	}
	if s.CurrentCard != nil {
		card := *s.CurrentCard
		out.CurrentCard = &card
	}
	if s.PendingGap != nil {
		gap := *s.PendingGap
		out.PendingGap = &gap
	}
	out.Challenges = slices.Clone(s.Challenges)
	out.ChallengeQueue = slices.Clone(s.ChallengeQueue)
	if s.LastResult != nil {
		res := *s.LastResult
		res.TokenChanges = maps.Clone(s.LastResult.TokenChanges)
		out.LastResult = &res
	}
	return &out
}

// ClearRound resets every round-scoped field.
func (s *GameState) ClearRound() {
	s.CurrentCard = nil
	s.PendingGap = nil
	s.Challenges = nil
	s.ChallengeQueue = nil
	s.CurrentChallengerIndex = 0
	s.LastResult = nil
}

// ActivePlayer returns the player whose turn it is.
func (s *GameState) ActivePlayer() (*Player, bool) {
	if s.ActivePlayerIndex < 0 || s.ActivePlayerIndex >= len(s.Players) {
		return nil, false
	}
	return &s.Players[s.ActivePlayerIndex], true
}

// PlayerIndex returns the index of the player with the given id, or -1.
func (s *GameState) PlayerIndex(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id.
func (s *GameState) Player(id string) (*Player, bool) {
	idx := s.PlayerIndex(id)
	if idx < 0 {
		return nil, false
	}
	return &s.Players[idx], true
}

// CurrentChallengerID returns the queued player whose turn it is to bet.
func (s *GameState) CurrentChallengerID() (string, bool) {
	if s.CurrentChallengerIndex < 0 || s.CurrentChallengerIndex >= len(s.ChallengeQueue) {
		return "", false
	}
	return s.ChallengeQueue[s.CurrentChallengerIndex], true
}

// GapClaimed reports whether gap is the pending guess or already claimed by a challenger.
func (s *GameState) GapClaimed(gap int) bool {
	if s.PendingGap != nil && *s.PendingGap == gap {
		return true
	}
	return slices.ContainsFunc(s.Challenges, func(c ChallengeRecord) bool {
		return c.Gap == gap
	})
}

// HasBet reports whether the player already holds a challenge record this round.
func (s *GameState) HasBet(playerID string) bool {
	return slices.ContainsFunc(s.Challenges, func(c ChallengeRecord) bool {
		return c.PlayerID == playerID
	})
}

// OccupiedSlots counts the distinct gaps taken by the active guess and accepted bets.
func (s *GameState) OccupiedSlots() int {
	seen := make(map[int]struct{}, len(s.Challenges)+1)
	if s.PendingGap != nil {
		seen[*s.PendingGap] = struct{}{}
	}
	for _, c := range s.Challenges {
		seen[c.Gap] = struct{}{}
	}
	return len(seen)
}

// UsedColors returns the set of colours already taken by players.
func (s *GameState) UsedColors() map[string]bool {
	used := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if p.Color != "" {
			used[p.Color] = true
		}
	}
	return used
}

// CardInPlay reports whether a card with id sits on a timeline or is being played.
func (s *GameState) CardInPlay(id string) bool {
	if s.CurrentCard != nil && s.CurrentCard.ID == id {
		return true
	}
	for _, p := range s.Players {
		for _, c := range p.Timeline {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}
