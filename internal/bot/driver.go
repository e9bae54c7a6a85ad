package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/app/session"
	"hitstory/internal/domain"
	"hitstory/internal/ports"
)

const (
	deckBatch  = 20
	maxRefills = 3
)

var (
	ErrSourceExhausted = errors.New("card source returned no cards")
	ErrNotStarted      = errors.New("game has not started")
	ErrStuck           = errors.New("no candidate action was accepted")
)

// Dispatcher applies actions to a shared game state; *session.Session satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, action app.Action) (session.Result, error)
	State() *domain.GameState
}

var _ Dispatcher = (*session.Session)(nil)

// Summary reports what an autoplay run did.
type Summary struct {
	Steps     int
	Rounds    int
	Rejected  int
	Finished  bool
	Standings []domain.Standing
}

// Driver plays every seat of a started game with bot agents.
type Driver struct {
	dispatcher Dispatcher
	source     ports.CardSource
	logger     runtime.Logger
	agents     map[string]*Agent
	fallback   Brain
	deck       []domain.Card
	asked      map[string]bool
}

// NewDriver builds a driver. Seats without an agent play at random level.
func NewDriver(dispatcher Dispatcher, source ports.CardSource, logger runtime.Logger, rng *rand.Rand, agents ...*Agent) *Driver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Driver{
		dispatcher: dispatcher,
		source:     source,
		logger:     logger,
		agents:     make(map[string]*Agent, len(agents)),
		fallback:   &TunedBot{rng: rng, tuning: ForLevel(BotLevelRandom)},
		asked:      make(map[string]bool),
	}
	for _, a := range agents {
		d.agents[a.ID] = a
	}
	return d
}

func (d *Driver) brain(playerID string) Brain {
	if a, ok := d.agents[playerID]; ok && a.Strategy != nil {
		return a.Strategy
	}
	return d.fallback
}

// Run dispatches up to maxSteps accepted actions, stopping early once the game is over for good.
func (d *Driver) Run(ctx context.Context, maxSteps int) (sum Summary, err error) {
	defer func() {
		sum.Standings = domain.Standings(d.dispatcher.State().Players)
	}()

	for sum.Steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		state := d.dispatcher.State()
		if state.Phase == domain.PhaseSetup {
			return sum, ErrNotStarted
		}
		candidates, err := d.candidates(ctx, state)
		if err != nil {
			return sum, err
		}

		accepted := false
		for _, action := range candidates {
			res, err := d.dispatcher.Dispatch(ctx, action)
			if err != nil {
				return sum, fmt.Errorf("dispatch %s: %w", action.Kind(), err)
			}
			if res.Rejected != nil {
				sum.Rejected++
				continue
			}
			accepted = true
			sum.Steps++
			if action.Kind() == app.ActionConfirmReveal {
				sum.Rounds++
			}
			break
		}
		if !accepted {
			if state.Phase == domain.PhaseGameOver {
				sum.Finished = true
				d.logger.Info("autoplay finished after %d steps, %d rounds", sum.Steps, sum.Rounds)
				return sum, nil
			}
			return sum, fmt.Errorf("%w in %s", ErrStuck, state.Phase)
		}
	}
	return sum, nil
}

// candidates lists the actions to try this step, most preferred first.
func (d *Driver) candidates(ctx context.Context, state *domain.GameState) ([]app.Action, error) {
	active, ok := state.ActivePlayer()
	if !ok {
		return nil, fmt.Errorf("%w: no active player", ErrNotStarted)
	}

	switch state.Phase {
	case domain.PhasePreTurn:
		c, err := d.draw(ctx, state)
		if err != nil {
			return nil, err
		}
		clear(d.asked)
		return []app.Action{app.SetCurrentCard{Card: c}}, nil

	case domain.PhaseListening:
		if state.CurrentCard == nil {
			return []app.Action{app.ResetCurrentCard{}}, nil
		}
		brain := d.brain(active.ID)
		guess := app.GuessGap{Gap: brain.Guess(active.Timeline, *state.CurrentCard)}
		if shortcut := brain.Shortcut(state); shortcut != nil {
			return []app.Action{shortcut, guess}, nil
		}
		return []app.Action{guess}, nil

	case domain.PhaseChallengeSelection:
		for _, p := range state.Players {
			// Seats that cannot pay the stake are never offered a challenge.
			if p.ID == active.ID || p.HasWon || p.Tokens < domain.ChallengeStake || d.asked[p.ID] {
				continue
			}
			d.asked[p.ID] = true
			if d.brain(p.ID).Challenge(state, p.ID) {
				return []app.Action{app.ToggleChallenger{PlayerID: p.ID}}, nil
			}
		}
		if len(state.ChallengeQueue) > 0 {
			return []app.Action{app.StartChallengeRound{}}, nil
		}
		return []app.Action{app.ConfirmReveal{}}, nil

	case domain.PhaseChallengePlacement:
		id, ok := state.CurrentChallengerID()
		if !ok {
			return []app.Action{app.ConfirmReveal{}}, nil
		}
		if gap, ok := d.brain(id).Bet(state, id); ok {
			return []app.Action{app.PlaceBet{Gap: gap}, app.PassChallenge{}}, nil
		}
		return []app.Action{app.PassChallenge{}}, nil

	case domain.PhaseReveal:
		return []app.Action{app.NextTurn{}}, nil

	case domain.PhaseGameOver:
		return []app.Action{app.ContinueGame{}}, nil
	}
	return nil, fmt.Errorf("unexpected phase %q", state.Phase)
}

// draw takes the next card from the local deck that is not already in play,
// refilling the deck from the source when it runs dry.
func (d *Driver) draw(ctx context.Context, state *domain.GameState) (domain.Card, error) {
	for refills := 0; ; {
		for len(d.deck) > 0 {
			c := d.deck[0]
			d.deck = d.deck[1:]
			if !state.CardInPlay(c.ID) {
				return c, nil
			}
		}
		if refills == maxRefills {
			return domain.Card{}, ErrSourceExhausted
		}
		refills++
		cards, err := d.source.RandomCards(ctx, state.Settings.SourceID, deckBatch)
		if err != nil {
			return domain.Card{}, fmt.Errorf("draw card: %w", err)
		}
		if len(cards) == 0 {
			return domain.Card{}, ErrSourceExhausted
		}
		d.deck = cards
	}
}
