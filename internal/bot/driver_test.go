package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/app/session"
	"hitstory/internal/domain"
	"hitstory/internal/storage/memory"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// fakeSource deals cards with random years from a seeded rng.
type fakeSource struct {
	rng   *rand.Rand
	next  int
	empty bool
}

func (f *fakeSource) RandomCards(_ context.Context, _ string, count int) ([]domain.Card, error) {
	if f.empty {
		return nil, nil
	}
	cards := make([]domain.Card, count)
	for i := range cards {
		f.next++
		cards[i] = domain.Card{ID: fmt.Sprintf("card-%d", f.next), Title: "Song", Year: 1950 + f.rng.Intn(75)}
	}
	return cards, nil
}

// checkedDispatcher validates every accepted state.
type checkedDispatcher struct {
	t *testing.T
	*session.Session
}

func (c checkedDispatcher) Dispatch(ctx context.Context, action app.Action) (session.Result, error) {
	res, err := c.Session.Dispatch(ctx, action)
	if err == nil && res.Rejected == nil {
		if verr := res.State.Validate(); verr != nil {
			c.t.Fatalf("%s produced invalid state: %v", action.Kind(), verr)
		}
	}
	return res, err
}

// newTable seats one bot per level and starts a game.
func newTable(t *testing.T, seed int64, target int, levels ...BotLevel) (checkedDispatcher, *fakeSource, []*Agent) {
	t.Helper()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(seed))
	n := 0
	svc := app.NewService(rand.New(rand.NewSource(seed)), app.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}))
	d := checkedDispatcher{t: t, Session: session.New(svc, memory.New(), noopLogger{})}

	var agents []*Agent
	for i, level := range levels {
		name := FriendlyName(rng)
		if _, err := d.Dispatch(ctx, app.AddPlayer{Name: name}); err != nil {
			t.Fatalf("add player: %v", err)
		}
		brain, err := NewBrain(level, rng)
		if err != nil {
			t.Fatalf("NewBrain(%s) error: %v", level, err)
		}
		agents = append(agents, &Agent{ID: fmt.Sprintf("p%d", i+1), Name: name, Strategy: brain})
	}
	if res, err := d.Dispatch(ctx, app.StartGame{SourceID: "test", TargetScore: target}); err != nil || res.Rejected != nil {
		t.Fatalf("start game: %v / %v", err, res.Rejected)
	}
	source := &fakeSource{rng: rng}
	if err := DealInitialCards(ctx, d, source, "test"); err != nil {
		t.Fatalf("DealInitialCards() error: %v", err)
	}
	return d, source, agents
}

func TestAutoplayKeepsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			d, source, agents := newTable(t, seed, 6, BotLevelRandom, BotLevelGood, BotLevelRandom, BotLevelGood)
			driver := NewDriver(d, source, noopLogger{}, rand.New(rand.NewSource(seed)), agents...)
			if _, err := driver.Run(context.Background(), 1500); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
		})
	}
}

func TestGodBotsFinishWithRanks(t *testing.T) {
	d, source, agents := newTable(t, 9, 5, BotLevelGod, BotLevelGod, BotLevelGod, BotLevelGod)
	driver := NewDriver(d, source, noopLogger{}, nil, agents...)

	sum, err := driver.Run(context.Background(), 10000)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !sum.Finished {
		t.Fatalf("game did not finish in %d steps", sum.Steps)
	}
	state := d.State()
	if state.Phase != domain.PhaseGameOver || state.WinnerID == "" {
		t.Fatalf("final phase = %s winner = %q", state.Phase, state.WinnerID)
	}

	ranks := map[int]string{}
	for _, p := range state.Players {
		if p.HasWon {
			if prev, dup := ranks[p.Rank]; dup {
				t.Fatalf("rank %d assigned to %s and %s", p.Rank, prev, p.ID)
			}
			ranks[p.Rank] = p.ID
		}
	}
	if len(ranks) != 2 || ranks[1] == "" || ranks[2] == "" {
		t.Fatalf("ranks = %v, want places 1 and 2", ranks)
	}
	if sum.Standings[0].Place != 1 || !sum.Standings[0].Final {
		t.Fatalf("standings[0] = %+v, want final first place", sum.Standings[0])
	}
	// Perfect players never lose a card, so every round grows a timeline.
	if sum.Rejected != 1 {
		t.Fatalf("rejected = %d, want only the final continue", sum.Rejected)
	}
}

func TestRunBeforeStart(t *testing.T) {
	svc := app.NewService(rand.New(rand.NewSource(1)))
	s := session.New(svc, memory.New(), noopLogger{})
	driver := NewDriver(s, &fakeSource{rng: rand.New(rand.NewSource(1))}, noopLogger{}, nil)
	if _, err := driver.Run(context.Background(), 10); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Run() error = %v, want %v", err, ErrNotStarted)
	}
}

func TestRunStopsWhenSourceIsEmpty(t *testing.T) {
	d, source, agents := newTable(t, 3, 10, BotLevelRandom, BotLevelRandom)
	source.empty = true
	driver := NewDriver(d, source, noopLogger{}, nil, agents...)
	if _, err := driver.Run(context.Background(), 10); !errors.Is(err, ErrSourceExhausted) {
		t.Fatalf("Run() error = %v, want %v", err, ErrSourceExhausted)
	}
}

func TestDealInitialCardsSkipsDealtPlayers(t *testing.T) {
	d, source, _ := newTable(t, 4, 10, BotLevelRandom, BotLevelRandom)
	before := source.next
	if err := DealInitialCards(context.Background(), d, source, "test"); err != nil {
		t.Fatalf("DealInitialCards() error: %v", err)
	}
	if source.next != before {
		t.Fatalf("second deal fetched %d cards, want none", source.next-before)
	}
	for _, p := range d.State().Players {
		if len(p.Timeline) != 1 {
			t.Fatalf("player %s has %d cards, want 1", p.ID, len(p.Timeline))
		}
	}
}
