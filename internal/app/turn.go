package app

import "hitstory/internal/domain"

func (s *Service) setCurrentCard(state *domain.GameState, a SetCurrentCard) ([]Event, error) {
	if state.Phase != domain.PhasePreTurn {
		return nil, ErrWrongPhase
	}
	active, ok := state.ActivePlayer()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	card := a.Card
	state.CurrentCard = &card
	state.Phase = domain.PhaseListening
	return []Event{{Kind: EventCardDrawn, Payload: CardDrawnPayload{PlayerID: active.ID, CardID: card.ID}}}, nil
}

func (s *Service) resetCurrentCard(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhaseListening {
		return nil, ErrWrongPhase
	}
	state.CurrentCard = nil
	state.Phase = domain.PhasePreTurn
	return []Event{{Kind: EventCardReset}}, nil
}

func (s *Service) guessGap(state *domain.GameState, a GuessGap) ([]Event, error) {
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
	if !domain.ValidGap(active.Timeline, a.Gap) {
		return nil, ErrInvalidGap
	}
	gap := a.Gap
	state.PendingGap = &gap
	state.Challenges = nil
	state.ChallengeQueue = nil
	state.CurrentChallengerIndex = 0
	state.Phase = domain.PhaseChallengeSelection
	return []Event{{Kind: EventGapGuessed, Payload: GapGuessedPayload{PlayerID: active.ID, Gap: gap}}}, nil
}

func (s *Service) confirmReveal(state *domain.GameState) ([]Event, error) {
	switch state.Phase {
	case domain.PhaseChallengeSelection:
		if len(state.ChallengeQueue) > 0 {
			return nil, ErrChallengeOpen
		}
	case domain.PhaseChallengePlacement:
		if state.CurrentChallengerIndex < len(state.ChallengeQueue) {
			return nil, ErrChallengeOpen
		}
	default:
		return nil, ErrWrongPhase
	}
	if state.CurrentCard == nil {
		return nil, ErrMissingCard
	}
	if state.PendingGap == nil {
		return nil, ErrMissingGuess
	}
	if _, ok := state.ActivePlayer(); !ok {
		return nil, ErrUnknownPlayer
	}

	players, result := domain.Resolve(state.Players, state.ActivePlayerIndex, *state.CurrentCard, *state.PendingGap, state.Challenges)
	state.Players = players
	state.LastResult = &result
	state.PendingGap = nil
	state.Phase = domain.PhaseReveal

	events := []Event{{Kind: EventRoundRevealed, Payload: RoundRevealedPayload{Result: result}}}
	return append(events, checkWinner(state)...), nil
}

func (s *Service) nextTurn(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhaseReveal {
		return nil, ErrWrongPhase
	}
	if len(state.Players) == 0 {
		return nil, ErrTooFewPlayers
	}
	state.ActivePlayerIndex = domain.NextUnfinished(state.Players, state.ActivePlayerIndex)
	state.ClearRound()
	state.Phase = domain.PhasePreTurn
	return []Event{{
		Kind:    EventTurnAdvanced,
		Payload: TurnAdvancedPayload{PlayerID: state.Players[state.ActivePlayerIndex].ID},
	}}, nil
}

func (s *Service) continueGame(state *domain.GameState) ([]Event, error) {
	if state.Phase != domain.PhaseGameOver {
		return nil, ErrWrongPhase
	}
	winner, ok := state.Player(state.WinnerID)
	if !ok {
		return nil, ErrNoWinner
	}
	if domain.RemainingContestants(state.Players, winner.ID) < MinContestantsToContinue {
		return nil, ErrNotEnoughContestants
	}

	winner.Rank = domain.FinishedCount(state.Players) + 1
	winner.HasWon = true
	state.WinnerID = ""
	state.ActivePlayerIndex = domain.NextUnfinished(state.Players, state.ActivePlayerIndex)
	state.ClearRound()
	state.Phase = domain.PhasePreTurn

	return []Event{{
		Kind: EventGameContinued,
		Payload: GameContinuedPayload{
			PlayerID:     winner.ID,
			Rank:         winner.Rank,
			NextPlayerID: state.Players[state.ActivePlayerIndex].ID,
		},
	}}, nil
}
