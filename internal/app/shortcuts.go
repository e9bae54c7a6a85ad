package app

import "hitstory/internal/domain"

// skipCard discards the current card, if any, and keeps the turn in PRE_TURN.
func (s *Service) skipCard(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhasePreTurn && state.Phase != domain.PhaseListening {
		return nil, ErrWrongPhase
	}
	active, ok := state.ActivePlayer()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if active.Tokens < s.rules.SkipCost {
		return nil, ErrInsufficientTokens
	}
	active.Tokens -= s.rules.SkipCost
	state.CurrentCard = nil
	state.Phase = domain.PhasePreTurn

	events := []Event{{Kind: EventCardSkipped, Payload: CardSkippedPayload{PlayerID: active.ID, Cost: s.rules.SkipCost}}}
	return append(events, checkWinner(state)...), nil
}

// autoPlace inserts the current card at its sorted position with no challenge phase.
func (s *Service) autoPlace(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhaseListening {
		return nil, ErrWrongPhase
	}
	if state.CurrentCard == nil {
		return nil, ErrMissingCard
	}
	active, ok := state.ActivePlayer()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if active.Tokens < s.rules.AutoPlaceCost {
		return nil, ErrInsufficientTokens
	}
	card := *state.CurrentCard
	active.Tokens -= s.rules.AutoPlaceCost
	active.Timeline = domain.InsertSorted(active.Timeline, card)
	state.CurrentCard = nil
	state.Phase = domain.PhasePreTurn

	events := []Event{{
		Kind:    EventCardAutoPlaced,
		Payload: CardAutoPlacedPayload{PlayerID: active.ID, Cost: s.rules.AutoPlaceCost, Year: card.Year},
	}}
	return append(events, checkWinner(state)...), nil
}
