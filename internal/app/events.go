package app

import "hitstory/internal/domain"

// EventKind identifies emitted domain events.
type EventKind string

const (
	EventPlayerAdded           EventKind = "player_added"
	EventPlayerRemoved         EventKind = "player_removed"
	EventGameStarted           EventKind = "game_started"
	EventInitialCardsDealt     EventKind = "initial_cards_dealt"
	EventCardDrawn             EventKind = "card_drawn"
	EventCardReset             EventKind = "card_reset"
	EventGapGuessed            EventKind = "gap_guessed"
	EventChallengerToggled     EventKind = "challenger_toggled"
	EventChallengeRoundStarted EventKind = "challenge_round_started"
	EventBetPlaced             EventKind = "bet_placed"
	EventChallengePassed       EventKind = "challenge_passed"
	EventChallengeClosed       EventKind = "challenge_closed"
	EventRoundRevealed         EventKind = "round_revealed"
	EventTurnAdvanced          EventKind = "turn_advanced"
	EventCardSkipped           EventKind = "card_skipped"
	EventCardAutoPlaced        EventKind = "card_auto_placed"
	EventWinnerFound           EventKind = "winner_found"
	EventGameContinued         EventKind = "game_continued"
	EventTokensAdjusted        EventKind = "tokens_adjusted"
	EventStateRestored         EventKind = "state_restored"
)

// Event is a domain/app event describing one accepted transition.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload,omitempty"`
}

type PlayerAddedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Tokens   int    `json:"tokens"`
}

type PlayerRemovedPayload struct {
	PlayerID string `json:"playerId"`
}

type GameStartedPayload struct {
	Phase         domain.Phase `json:"phase"`
	TargetScore   int          `json:"targetScore"`
	FirstPlayerID string       `json:"firstPlayerId"`
}

type InitialCardsDealtPayload struct {
	PlayerIDs []string `json:"playerIds"`
}

type CardDrawnPayload struct {
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
}

type GapGuessedPayload struct {
	PlayerID string `json:"playerId"`
	Gap      int    `json:"index"`
}

type ChallengerToggledPayload struct {
	PlayerID string `json:"playerId"`
	OptedIn  bool   `json:"optedIn"`
}

type ChallengeRoundStartedPayload struct {
	Queue []string `json:"queue"`
}

type BetPlacedPayload struct {
	PlayerID string `json:"playerId"`
	Gap      int    `json:"index"`
}

type ChallengePassedPayload struct {
	PlayerID string `json:"playerId"`
}

// ChallengeClosedPayload reports challengers skipped because every gap was taken.
type ChallengeClosedPayload struct {
	Skipped []string `json:"skipped"`
}

type RoundRevealedPayload struct {
	Result domain.RevealResult `json:"result"`
}

type TurnAdvancedPayload struct {
	PlayerID string `json:"playerId"`
}

type CardSkippedPayload struct {
	PlayerID string `json:"playerId"`
	Cost     int    `json:"cost"`
}

type CardAutoPlacedPayload struct {
	PlayerID string `json:"playerId"`
	Cost     int    `json:"cost"`
	Year     int    `json:"year"`
}

type WinnerFoundPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Place    int    `json:"place"`
}

type GameContinuedPayload struct {
	PlayerID     string `json:"playerId"`
	Rank         int    `json:"rank"`
	NextPlayerID string `json:"nextPlayerId"`
}

type TokensAdjustedPayload struct {
	PlayerID string `json:"playerId"`
	Delta    int    `json:"delta"`
	Tokens   int    `json:"tokens"`
}

type StateRestoredPayload struct {
	Phase   domain.Phase `json:"phase"`
	Players int          `json:"players"`
}
