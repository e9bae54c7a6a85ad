package domain

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseSetup is the lobby where players are added and removed.
	PhaseSetup Phase = "SETUP"
	// PhasePreTurn waits for the active player to draw a card.
	PhasePreTurn Phase = "PRE_TURN"
	// PhaseListening is the active player listening to the card in play.
	PhaseListening Phase = "LISTENING"
	// PhaseChallengeSelection lets opponents opt in to challenge the pending guess.
	PhaseChallengeSelection Phase = "CHALLENGE_SELECTION"
	// PhaseChallengePlacement has opted-in challengers placing bets in queue order.
	PhaseChallengePlacement Phase = "CHALLENGE_PLACEMENT"
	// PhaseReveal shows the result of the round.
	PhaseReveal Phase = "REVEAL"
	// PhaseGameOver is entered when a player reaches the target score.
	PhaseGameOver Phase = "GAME_OVER"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{
	PhaseSetup,
	PhasePreTurn,
	PhaseListening,
	PhaseChallengeSelection,
	PhaseChallengePlacement,
	PhaseReveal,
	PhaseGameOver,
}

// Card is a single music release. Only Year takes part in the rules.
type Card struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Year   int    `json:"year"`
	Image  string `json:"image"`
	URI    string `json:"uri"`
}

// Difficulty is a player's tier. It only affects the starting token balance.
type Difficulty string

const (
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyPro    Difficulty = "PRO"
	DifficultyExpert Difficulty = "EXPERT"
)

// StartingTokens returns the token balance a new player of this tier begins with.
func (d Difficulty) StartingTokens() int {
	switch d {
	case DifficultyPro:
		return 5
	case DifficultyExpert:
		return 3
	default:
		return 2
	}
}

// Player holds the state of a single participant.
type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Timeline   []Card     `json:"timeline"`
	Tokens     int        `json:"tokens"`
	Difficulty Difficulty `json:"difficulty"`
	Color      string     `json:"color"`
	HasWon     bool       `json:"hasWon,omitempty"`
	Rank       int        `json:"rank,omitempty"` // 1-based, set together with HasWon
}

// ChallengeRecord is a placed bet: the challenger claims Gap in the active player's timeline.
type ChallengeRecord struct {
	PlayerID string `json:"playerId"`
	Gap      int    `json:"index"`
}

// RevealResult describes the outcome of the last resolved round.
type RevealResult struct {
	Correct      bool           `json:"correct"`
	ActualYear   int            `json:"actualYear"`
	StolenBy     string         `json:"stolenBy,omitempty"`
	StolenByID   string         `json:"stolenById,omitempty"`
	Pot          int            `json:"pot,omitempty"`
	TokenChanges map[string]int `json:"tokenChanges,omitempty"` // player id -> delta
}

// Settings are chosen once when the game starts.
type Settings struct {
	TargetScore int    `json:"targetScore"`
	SourceID    string `json:"playlistId,omitempty"`
	SourceName  string `json:"playlistName,omitempty"`
}

// GameState is the whole aggregate and the unit of persistence.
type GameState struct {
	Players           []Player `json:"players"`
	ActivePlayerIndex int      `json:"activePlayerIndex"`
	Phase             Phase    `json:"currentPhase"`

	// Round-scoped, cleared on turn advance.
	CurrentCard            *Card             `json:"currentCard"`
	PendingGap             *int              `json:"pendingPlacement"`
	Challenges             []ChallengeRecord `json:"challengerIds"`
	ChallengeQueue         []string          `json:"challengeQueue"`
	CurrentChallengerIndex int               `json:"currentChallengerIndex"`

	LastResult *RevealResult `json:"lastResult,omitempty"`
	WinnerID   string        `json:"winnerId,omitempty"`
	Settings   Settings      `json:"settings"`
}
