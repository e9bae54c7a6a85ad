package app

import "hitstory/internal/domain"

// ActionKind names an action on the wire.
type ActionKind string

const (
	ActionAddPlayer              ActionKind = "add_player"
	ActionRemovePlayer           ActionKind = "remove_player"
	ActionStartGame              ActionKind = "start_game"
	ActionDistributeInitialCards ActionKind = "distribute_initial_cards"
	ActionSetCurrentCard         ActionKind = "set_current_card"
	ActionResetCurrentCard       ActionKind = "reset_current_card"
	ActionGuessGap               ActionKind = "guess_gap"
	ActionToggleChallenger       ActionKind = "toggle_challenger"
	ActionStartChallengeRound    ActionKind = "start_challenge_round"
	ActionPlaceBet               ActionKind = "place_bet"
	ActionPassChallenge          ActionKind = "pass_challenge"
	ActionConfirmReveal          ActionKind = "confirm_reveal"
	ActionNextTurn               ActionKind = "next_turn"
	ActionSkipCard               ActionKind = "skip_card"
	ActionAutoPlace              ActionKind = "auto_place"
	ActionContinueGame           ActionKind = "continue_game"
	ActionAdjustTokens           ActionKind = "adjust_tokens"
	ActionRestoreState           ActionKind = "restore_state"
)

// Action is one input to the engine. The set is closed; see Apply.
type Action interface {
	Kind() ActionKind
	sealed()
}

// AddPlayer seats a new player during setup. Color is optional.
type AddPlayer struct {
	Name       string            `json:"name"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Color      string            `json:"color,omitempty"`
}

// RemovePlayer removes a seated player during setup.
type RemovePlayer struct {
	PlayerID string `json:"playerId"`
}

// StartGame leaves setup. A non-positive TargetScore uses the default.
type StartGame struct {
	SourceID    string `json:"playlistId"`
	SourceName  string `json:"playlistName"`
	TargetScore int    `json:"targetScore"`
}

// InitialDeal gives Card to PlayerID without a correctness check.
type InitialDeal struct {
	PlayerID string      `json:"playerId"`
	Card     domain.Card `json:"song"`
}

// DistributeInitialCards hands out starting cards in bulk.
type DistributeInitialCards struct {
	Deals []InitialDeal `json:"deals"`
}

// SetCurrentCard begins the round with the drawn card.
type SetCurrentCard struct {
	Card domain.Card `json:"song"`
}

// ResetCurrentCard discards the drawn card without penalty.
type ResetCurrentCard struct{}

// GuessGap records the active player's placement guess.
type GuessGap struct {
	Gap int `json:"index"`
}

// ToggleChallenger adds or removes a player from the challenge queue.
type ToggleChallenger struct {
	PlayerID string `json:"playerId"`
}

// StartChallengeRound shuffles the queue and opens betting.
type StartChallengeRound struct{}

// PlaceBet claims Gap for the challenger at the queue cursor.
type PlaceBet struct {
	Gap int `json:"index"`
}

// PassChallenge lets the challenger at the queue cursor decline.
type PassChallenge struct{}

// ConfirmReveal resolves the round.
type ConfirmReveal struct{}

// NextTurn hands the turn to the next unfinished player.
type NextTurn struct{}

// SkipCard spends tokens to discard the current card.
type SkipCard struct{}

// AutoPlace spends tokens to place the current card correctly.
type AutoPlace struct{}

// ContinueGame ranks the winner and resumes play for the next place.
type ContinueGame struct{}

// AdjustTokens adds Amount to a player's balance, clamped at zero.
type AdjustTokens struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// RestoreState replaces the whole state.
type RestoreState struct {
	State *domain.GameState `json:"state"`
}

func (AddPlayer) Kind() ActionKind              { return ActionAddPlayer }
func (RemovePlayer) Kind() ActionKind           { return ActionRemovePlayer }
func (StartGame) Kind() ActionKind              { return ActionStartGame }
func (DistributeInitialCards) Kind() ActionKind { return ActionDistributeInitialCards }
func (SetCurrentCard) Kind() ActionKind         { return ActionSetCurrentCard }
func (ResetCurrentCard) Kind() ActionKind       { return ActionResetCurrentCard }
func (GuessGap) Kind() ActionKind               { return ActionGuessGap }
func (ToggleChallenger) Kind() ActionKind       { return ActionToggleChallenger }
func (StartChallengeRound) Kind() ActionKind    { return ActionStartChallengeRound }
func (PlaceBet) Kind() ActionKind               { return ActionPlaceBet }
func (PassChallenge) Kind() ActionKind          { return ActionPassChallenge }
func (ConfirmReveal) Kind() ActionKind          { return ActionConfirmReveal }
func (NextTurn) Kind() ActionKind               { return ActionNextTurn }
func (SkipCard) Kind() ActionKind               { return ActionSkipCard }
func (AutoPlace) Kind() ActionKind              { return ActionAutoPlace }
func (ContinueGame) Kind() ActionKind           { return ActionContinueGame }
func (AdjustTokens) Kind() ActionKind           { return ActionAdjustTokens }
func (RestoreState) Kind() ActionKind           { return ActionRestoreState }

func (AddPlayer) sealed()              {}
func (RemovePlayer) sealed()           {}
func (StartGame) sealed()              {}
func (DistributeInitialCards) sealed() {}
func (SetCurrentCard) sealed()         {}
func (ResetCurrentCard) sealed()       {}
func (GuessGap) sealed()               {}
func (ToggleChallenger) sealed()       {}
func (StartChallengeRound) sealed()    {}
func (PlaceBet) sealed()               {}
func (PassChallenge) sealed()          {}
func (ConfirmReveal) sealed()          {}
func (NextTurn) sealed()               {}
func (SkipCard) sealed()               {}
func (AutoPlace) sealed()              {}
func (ContinueGame) sealed()           {}
func (AdjustTokens) sealed()           {}
func (RestoreState) sealed()           {}
