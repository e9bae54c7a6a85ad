package app

import (
	"strings"

	"hitstory/internal/domain"
)

func (s *Service) addPlayer(state *domain.GameState, a AddPlayer) ([]Event, error) {
	if state.Phase != domain.PhaseSetup {
		return nil, ErrWrongPhase
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return nil, ErrInvalidPlayer
	}
	if len(state.Players) >= s.rules.MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	difficulty := a.Difficulty
	switch difficulty {
	case "":
		difficulty = domain.DifficultyNormal
	case domain.DifficultyNormal, domain.DifficultyPro, domain.DifficultyExpert:
	default:
		return nil, ErrInvalidPlayer
	}
	color := a.Color
	if color == "" {
		color = s.pickColor(state)
	}

	player := domain.Player{
		ID:         s.newID(),
		Name:       name,
		Timeline:   []domain.Card{},
		Tokens:     difficulty.StartingTokens(),
		Difficulty: difficulty,
		Color:      color,
	}
	state.Players = append(state.Players, player)

	return []Event{{
		Kind: EventPlayerAdded,
		Payload: PlayerAddedPayload{
			PlayerID: player.ID,
			Name:     player.Name,
			Color:    player.Color,
			Tokens:   player.Tokens,
		},
	}}, nil
}

// pickColor returns the first palette colour nobody uses yet, cycling when all are taken.
func (s *Service) pickColor(state *domain.GameState) string {
	used := state.UsedColors()
	for _, c := range s.rules.Palette {
		if !used[c] {
			return c
		}
	}
	return s.rules.Palette[len(state.Players)%len(s.rules.Palette)]
}

func (s *Service) removePlayer(state *domain.GameState, a RemovePlayer) ([]Event, error) {
	if state.Phase != domain.PhaseSetup {
		return nil, ErrWrongPhase
	}
	idx := state.PlayerIndex(a.PlayerID)
	if idx < 0 {
		return nil, ErrUnknownPlayer
	}
	state.Players = append(state.Players[:idx], state.Players[idx+1:]...)
	return []Event{{Kind: EventPlayerRemoved, Payload: PlayerRemovedPayload{PlayerID: a.PlayerID}}}, nil
}

func (s *Service) startGame(state *domain.GameState, a StartGame) ([]Event, error) {
	if state.Phase != domain.PhaseSetup {
		return nil, ErrWrongPhase
	}
	if len(state.Players) < MinPlayersToStartGame {
		return nil, ErrTooFewPlayers
	}
	target := a.TargetScore
	if target <= 0 {
		target = s.rules.DefaultTargetScore
	}

	state.Phase = domain.PhasePreTurn
	state.ActivePlayerIndex = 0
	state.WinnerID = ""
	state.ClearRound()
	state.Settings = domain.Settings{
		TargetScore: target,
		SourceID:    a.SourceID,
		SourceName:  a.SourceName,
	}

	return []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:         state.Phase,
			TargetScore:   target,
			FirstPlayerID: state.Players[0].ID,
		},
	}}, nil
}

// distributeInitialCards is all-or-nothing: one unknown player rejects the whole batch.
func (s *Service) distributeInitialCards(state *domain.GameState, a DistributeInitialCards) ([]Event, error) {
	if state.Phase != domain.PhaseSetup && state.Phase != domain.PhasePreTurn {
		return nil, ErrWrongPhase
	}
	if len(a.Deals) == 0 {
		return nil, ErrMissingCard
	}
	ids := make([]string, 0, len(a.Deals))
	for _, deal := range a.Deals {
		p, ok := state.Player(deal.PlayerID)
		if !ok {
			return nil, ErrUnknownPlayer
		}
		p.Timeline = domain.InsertSorted(p.Timeline, deal.Card)
		ids = append(ids, deal.PlayerID)
	}
	return []Event{{Kind: EventInitialCardsDealt, Payload: InitialCardsDealtPayload{PlayerIDs: ids}}}, nil
}

func (s *Service) adjustTokens(state *domain.GameState, a AdjustTokens) ([]Event, error) {
	p, ok := state.Player(a.PlayerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	before := p.Tokens
	p.Tokens = max(0, p.Tokens+a.Amount)
	return []Event{{
		Kind: EventTokensAdjusted,
		Payload: TokensAdjustedPayload{
			PlayerID: p.ID,
			Delta:    p.Tokens - before,
			Tokens:   p.Tokens,
		},
	}}, nil
}
