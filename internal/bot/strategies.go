package bot

import (
	"math/rand"

	"hitstory/internal/app"
	"hitstory/internal/domain"
)

// TunedBot plays according to a Tuning.
type TunedBot struct {
	rng    *rand.Rand
	tuning Tuning
}

var _ Brain = (*TunedBot)(nil)

func (b *TunedBot) chance(p float64) bool {
	return p >= 1 || (p > 0 && b.rng.Float64() < p)
}

func (b *TunedBot) Shortcut(state *domain.GameState) app.Action {
	active, ok := state.ActivePlayer()
	if !ok {
		return nil
	}
	if b.tuning.AutoPlaceAt > 0 && active.Tokens >= b.tuning.AutoPlaceAt {
		return app.AutoPlace{}
	}
	if active.Tokens > 0 && b.chance(b.tuning.SkipRate) {
		return app.SkipCard{}
	}
	return nil
}

func (b *TunedBot) Guess(timeline []domain.Card, card domain.Card) int {
	if b.chance(b.tuning.Accuracy) {
		correct := domain.CorrectGaps(timeline, card.Year)
		return correct[b.rng.Intn(len(correct))]
	}
	return b.rng.Intn(len(timeline) + 1)
}

func (b *TunedBot) Challenge(state *domain.GameState, playerID string) bool {
	if b.tuning.Omniscient {
		_, ok := b.freeCorrectGap(state)
		return ok && !activeGuessCorrect(state)
	}
	return b.chance(b.tuning.ChallengeRate)
}

func (b *TunedBot) Bet(state *domain.GameState, playerID string) (int, bool) {
	if gap, ok := b.freeCorrectGap(state); ok && b.chance(b.tuning.Accuracy) {
		return gap, true
	}
	if b.tuning.Omniscient {
		return 0, false
	}
	free := freeGaps(state)
	if len(free) == 0 {
		return 0, false
	}
	return free[b.rng.Intn(len(free))], true
}

func (b *TunedBot) freeCorrectGap(state *domain.GameState) (int, bool) {
	active, ok := state.ActivePlayer()
	if !ok || state.CurrentCard == nil {
		return 0, false
	}
	for _, gap := range domain.CorrectGaps(active.Timeline, state.CurrentCard.Year) {
		if !state.GapClaimed(gap) {
			return gap, true
		}
	}
	return 0, false
}

func activeGuessCorrect(state *domain.GameState) bool {
	active, ok := state.ActivePlayer()
	if !ok || state.CurrentCard == nil || state.PendingGap == nil {
		return false
	}
	return domain.IsCorrectPlacement(active.Timeline, *state.PendingGap, state.CurrentCard.Year)
}

// freeGaps lists the gaps of the active timeline nobody has claimed yet.
func freeGaps(state *domain.GameState) []int {
	active, ok := state.ActivePlayer()
	if !ok {
		return nil
	}
	var free []int
	for gap := 0; gap <= len(active.Timeline); gap++ {
		if !state.GapClaimed(gap) {
			free = append(free, gap)
		}
	}
	return free
}
