package app

import (
	"slices"

	"hitstory/internal/domain"
)

func (s *Service) toggleChallenger(state *domain.GameState, a ToggleChallenger) ([]Event, error) {
	if state.Phase != domain.PhaseChallengeSelection {
		return nil, ErrWrongPhase
	}
	p, ok := state.Player(a.PlayerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if active, ok := state.ActivePlayer(); ok && active.ID == p.ID {
		return nil, ErrActivePlayer
	}
	if p.HasWon {
		return nil, ErrPlayerFinished
	}

	optedIn := true
	if i := slices.Index(state.ChallengeQueue, p.ID); i >= 0 {
		state.ChallengeQueue = slices.Delete(state.ChallengeQueue, i, i+1)
		optedIn = false
	} else {
		state.ChallengeQueue = append(state.ChallengeQueue, p.ID)
	}
	return []Event{{Kind: EventChallengerToggled, Payload: ChallengerToggledPayload{PlayerID: p.ID, OptedIn: optedIn}}}, nil
}

// startChallengeRound fixes the betting order for the round with one uniform shuffle.
func (s *Service) startChallengeRound(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhaseChallengeSelection {
		return nil, ErrWrongPhase
	}
	if len(state.ChallengeQueue) == 0 {
		return nil, ErrQueueEmpty
	}
	s.rng.Shuffle(len(state.ChallengeQueue), func(i, j int) {
		state.ChallengeQueue[i], state.ChallengeQueue[j] = state.ChallengeQueue[j], state.ChallengeQueue[i]
	})
	state.Challenges = nil
	state.CurrentChallengerIndex = 0
	state.Phase = domain.PhaseChallengePlacement
	return []Event{{
		Kind:    EventChallengeRoundStarted,
		Payload: ChallengeRoundStartedPayload{Queue: slices.Clone(state.ChallengeQueue)},
	}}, nil
}

// placeBet records a bet for the challenger at the cursor. Once every gap of the
// active timeline is occupied the remaining challengers are skipped.
func (s *Service) placeBet(state *domain.GameState, a PlaceBet) ([]Event, error) {
	if state.Phase != domain.PhaseChallengePlacement {
		return nil, ErrWrongPhase
	}
	challengerID, ok := state.CurrentChallengerID()
	if !ok {
		return nil, ErrNoChallenger
	}
	active, ok := state.ActivePlayer()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if !domain.ValidGap(active.Timeline, a.Gap) {
		return nil, ErrInvalidGap
	}
	if state.PendingGap != nil && *state.PendingGap == a.Gap {
		return nil, ErrReservedSlot
	}
	if state.GapClaimed(a.Gap) {
		return nil, ErrSlotTaken
	}

	state.Challenges = append(state.Challenges, domain.ChallengeRecord{PlayerID: challengerID, Gap: a.Gap})
	state.CurrentChallengerIndex++
	events := []Event{{Kind: EventBetPlaced, Payload: BetPlacedPayload{PlayerID: challengerID, Gap: a.Gap}}}

	if state.OccupiedSlots() >= len(active.Timeline)+1 && state.CurrentChallengerIndex < len(state.ChallengeQueue) {
		skipped := slices.Clone(state.ChallengeQueue[state.CurrentChallengerIndex:])
		state.CurrentChallengerIndex = len(state.ChallengeQueue)
		events = append(events, Event{Kind: EventChallengeClosed, Payload: ChallengeClosedPayload{Skipped: skipped}})
	}
	return events, nil
}

func (s *Service) passChallenge(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhaseChallengePlacement {
		return nil, ErrWrongPhase
	}
	challengerID, ok := state.CurrentChallengerID()
	if !ok {
		return nil, ErrNoChallenger
	}
	state.CurrentChallengerIndex++
	return []Event{{Kind: EventChallengePassed, Payload: ChallengePassedPayload{PlayerID: challengerID}}}, nil
}
