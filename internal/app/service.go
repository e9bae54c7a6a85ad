package app

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"hitstory/internal/domain"
)

// IDGenerator returns a fresh player id.
type IDGenerator func() string

// Rules holds the tunable parts of the game.
type Rules struct {
	MaxPlayers         int
	Palette            []string
	DefaultTargetScore int
	SkipCost           int
	AutoPlaceCost      int
}

// DefaultRules returns the standard table rules.
func DefaultRules() Rules {
	return Rules{
		MaxPlayers:         domain.MaxPlayers,
		Palette:            append([]string(nil), domain.DefaultColors...),
		DefaultTargetScore: domain.DefaultTargetScore,
		SkipCost:           domain.SkipCost,
		AutoPlaceCost:      domain.AutoPlaceCost,
	}
}

func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	if r.MaxPlayers <= 0 {
		r.MaxPlayers = def.MaxPlayers
	}
	if len(r.Palette) == 0 {
		r.Palette = def.Palette
	}
	if r.DefaultTargetScore <= 0 {
		r.DefaultTargetScore = def.DefaultTargetScore
	}
	if r.SkipCost <= 0 {
		r.SkipCost = def.SkipCost
	}
	if r.AutoPlaceCost <= 0 {
		r.AutoPlaceCost = def.AutoPlaceCost
	}
	return r
}

// Service applies actions to game state. It is not safe for concurrent use;
// callers serialize dispatch.
type Service struct {
	rng   *rand.Rand
	newID IDGenerator
	rules Rules
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides the player id source.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithRules overrides the table rules. Zero fields keep their defaults.
func WithRules(r Rules) Option {
	return func(s *Service) {
		s.rules = r.withDefaults()
	}
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{
		rng:   rng,
		newID: func() string { return uuid.New().String() },
		rules: DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rules the service enforces.
func (s *Service) Rules() Rules {
	return s.rules
}

var (
	ErrUnknownAction        = errors.New("unknown action")
	ErrWrongPhase           = errors.New("action not allowed in current phase")
	ErrUnknownPlayer        = errors.New("player not found")
	ErrInvalidPlayer        = errors.New("invalid player")
	ErrTooManyPlayers       = errors.New("player limit reached")
	ErrTooFewPlayers        = errors.New("not enough players to start")
	ErrPlayerFinished       = errors.New("player already finished")
	ErrActivePlayer         = errors.New("active player cannot challenge")
	ErrInsufficientTokens   = errors.New("not enough tokens")
	ErrInvalidGap           = errors.New("gap out of range")
	ErrReservedSlot         = errors.New("gap is the active player's guess")
	ErrSlotTaken            = errors.New("gap already claimed")
	ErrMissingCard          = errors.New("no card in play")
	ErrMissingGuess         = errors.New("no pending guess")
	ErrQueueEmpty           = errors.New("challenge queue is empty")
	ErrNoChallenger         = errors.New("no challenger left to act")
	ErrChallengeOpen        = errors.New("challengers still to act")
	ErrNoWinner             = errors.New("no winner to confirm")
	ErrNotEnoughContestants = errors.New("not enough contestants to continue")
	ErrInvalidSnapshot      = errors.New("snapshot has no players")
)

// Apply computes the state that follows action. The input state is never
// modified. When the action is not valid for the state, Apply returns the
// input state unchanged, no events and the reason as error.
func (s *Service) Apply(state *domain.GameState, action Action) (*domain.GameState, []Event, error) {
	if state == nil {
		state = domain.NewGameState()
	}
	next := state.Clone()

	var (
		events []Event
		err    error
	)
	switch a := deref(action).(type) {
	case AddPlayer:
		events, err = s.addPlayer(next, a)
	case RemovePlayer:
		events, err = s.removePlayer(next, a)
	case StartGame:
		events, err = s.startGame(next, a)
	case DistributeInitialCards:
		events, err = s.distributeInitialCards(next, a)
	case SetCurrentCard:
		events, err = s.setCurrentCard(next, a)
	case ResetCurrentCard:
		events, err = s.resetCurrentCard(next)
	case GuessGap:
		events, err = s.guessGap(next, a)
	case ToggleChallenger:
		events, err = s.toggleChallenger(next, a)
	case StartChallengeRound:
		events, err = s.startChallengeRound(next)
	case PlaceBet:
		events, err = s.placeBet(next, a)
	case PassChallenge:
		events, err = s.passChallenge(next)
	case ConfirmReveal:
		events, err = s.confirmReveal(next)
	case NextTurn:
		events, err = s.nextTurn(next)
	case SkipCard:
		events, err = s.skipCard(next)
	case AutoPlace:
		events, err = s.autoPlace(next)
	case ContinueGame:
		events, err = s.continueGame(next)
	case AdjustTokens:
		events, err = s.adjustTokens(next, a)
	case RestoreState:
		if a.State == nil || a.State.Players == nil {
			return state, nil, ErrInvalidSnapshot
		}
		next = a.State.Clone()
		events = []Event{{Kind: EventStateRestored, Payload: StateRestoredPayload{Phase: next.Phase, Players: len(next.Players)}}}
	default:
		err = ErrUnknownAction
	}
	if err != nil {
		return state, nil, err
	}
	return next, events, nil
}

// checkWinner moves the game to GAME_OVER when an unfinished player reached the target.
func checkWinner(state *domain.GameState) []Event {
	idx, ok := domain.FindWinnerCandidate(state.Players, state.Settings.TargetScore)
	if !ok {
		return nil
	}
	winner := state.Players[idx]
	state.WinnerID = winner.ID
	state.Phase = domain.PhaseGameOver
	return []Event{{
		Kind: EventWinnerFound,
		Payload: WinnerFoundPayload{
			PlayerID: winner.ID,
			Name:     winner.Name,
			Place:    domain.FinishedCount(state.Players) + 1,
		},
	}}
}
