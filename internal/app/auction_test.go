package app

import (
	"errors"
	"reflect"
	"testing"

	"hitstory/internal/domain"
)

// selectionState returns a state where p1 guessed gap for year and is waiting for challengers.
func selectionState(t *testing.T, svc *Service, year, gap int, timelines ...[]domain.Card) *domain.GameState {
	t.Helper()
	state := playingState(timelines...)
	state, _ = mustApply(t, svc, state, SetCurrentCard{Card: card("round", year)})
	state, _ = mustApply(t, svc, state, GuessGap{Gap: gap})
	return state
}

func TestToggleChallenger(t *testing.T) {
	svc := newTestService(1)
	state := selectionState(t, svc, 1998, 1, timelineOf(1990, 2005), nil, nil)

	state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: "p2"})
	state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: "p3"})
	state, evs := mustApply(t, svc, state, ToggleChallenger{PlayerID: "p2"})
	if want := []string{"p3"}; !reflect.DeepEqual(state.ChallengeQueue, want) {
		t.Fatalf("queue = %v, want %v", state.ChallengeQueue, want)
	}
	if p := evs[0].Payload.(ChallengerToggledPayload); p.OptedIn {
		t.Fatalf("second toggle should opt out")
	}

	tests := []struct {
		name string
		id   string
		want error
	}{
		{name: "active player", id: "p1", want: ErrActivePlayer},
		{name: "unknown", id: "ghost", want: ErrUnknownPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Apply(state, ToggleChallenger{PlayerID: tt.id}); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStartChallengeRoundRequiresQueue(t *testing.T) {
	svc := newTestService(1)
	state := selectionState(t, svc, 1998, 1, timelineOf(1990, 2005), nil)
	if _, _, err := svc.Apply(state, StartChallengeRound{}); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("error = %v, want %v", err, ErrQueueEmpty)
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	order := func(seed int64) []string {
		svc := newTestService(seed)
		state := selectionState(t, svc, 1998, 1, timelineOf(1990, 2005), nil, nil, nil, nil, nil)
		for _, id := range []string{"p2", "p3", "p4", "p5", "p6"} {
			state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: id})
		}
		state, _ = mustApply(t, svc, state, StartChallengeRound{})
		return state.ChallengeQueue
	}
	first, second := order(7), order(7)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced %v and %v", first, second)
	}
	if len(first) != 5 {
		t.Fatalf("queue length = %d, want 5", len(first))
	}
}

func TestChallengerStealRound(t *testing.T) {
	svc := newTestService(3)
	state := selectionState(t, svc, 1985, 1, timelineOf(1990, 2005), timelineOf(2015), timelineOf(1960))
	state.Players[2].Tokens = 1

	state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: "p2"})
	state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: "p3"})
	state, _ = mustApply(t, svc, state, StartChallengeRound{})

	// Whoever bets first, p2 takes the correct front gap and p3 a wrong one.
	bets := map[string]int{"p2": 0, "p3": 2}
	for state.CurrentChallengerIndex < len(state.ChallengeQueue) {
		id, _ := state.CurrentChallengerID()
		state, _ = mustApply(t, svc, state, PlaceBet{Gap: bets[id]})
	}

	state, _ = mustApply(t, svc, state, ConfirmReveal{})
	res := state.LastResult
	if res.Correct || res.StolenByID != "p2" || res.Pot != 1 {
		t.Fatalf("result = %+v, want steal by p2 with pot 1", res)
	}
	if state.Players[0].Tokens != 2 || len(state.Players[0].Timeline) != 2 {
		t.Fatalf("active player must be unchanged: %+v", state.Players[0])
	}
	if state.Players[1].Tokens != 3 || state.Players[1].Timeline[0].Year != 1985 {
		t.Fatalf("stealer = %+v, want 3 tokens and card sorted first", state.Players[1])
	}
	if state.Players[2].Tokens != 0 {
		t.Fatalf("losing challenger tokens = %d, want 0", state.Players[2].Tokens)
	}
}

func TestPlaceBetSlotConflicts(t *testing.T) {
	svc := newTestService(1)
	state := selectionState(t, svc, 1998, 1, timelineOf(1970, 1990, 2005), nil, nil)
	state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: "p2"})
	state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: "p3"})
	state, _ = mustApply(t, svc, state, StartChallengeRound{})

	first, _ := state.CurrentChallengerID()
	next, _, err := svc.Apply(state, PlaceBet{Gap: 1})
	if !errors.Is(err, ErrReservedSlot) || next != state {
		t.Fatalf("bet on reserved gap error = %v, want %v", err, ErrReservedSlot)
	}
	if _, _, err := svc.Apply(state, PlaceBet{Gap: 9}); !errors.Is(err, ErrInvalidGap) {
		t.Fatalf("bet out of range error = %v, want %v", err, ErrInvalidGap)
	}

	state, _ = mustApply(t, svc, state, PlaceBet{Gap: 2})
	if state.Challenges[0].PlayerID != first {
		t.Fatalf("bet recorded for %q, want %q", state.Challenges[0].PlayerID, first)
	}

	before := state.CurrentChallengerIndex
	next, _, err = svc.Apply(state, PlaceBet{Gap: 2})
	if !errors.Is(err, ErrSlotTaken) || next.CurrentChallengerIndex != before {
		t.Fatalf("bet on claimed gap error = %v, cursor %d -> %d", err, before, next.CurrentChallengerIndex)
	}

	state, _ = mustApply(t, svc, state, PassChallenge{})
	if _, _, err := svc.Apply(state, PassChallenge{}); !errors.Is(err, ErrNoChallenger) {
		t.Fatalf("pass past queue end error = %v, want %v", err, ErrNoChallenger)
	}
	if _, _, err := svc.Apply(state, PlaceBet{Gap: 3}); !errors.Is(err, ErrNoChallenger) {
		t.Fatalf("bet past queue end error = %v, want %v", err, ErrNoChallenger)
	}
}

func TestChallengeQueueExhaustion(t *testing.T) {
	svc := newTestService(1)
	// One card means two gaps: the active guess takes one, the first bet the other.
	state := selectionState(t, svc, 1990, 0, timelineOf(2000), nil, nil, nil)
	for _, id := range []string{"p2", "p3", "p4"} {
		state, _ = mustApply(t, svc, state, ToggleChallenger{PlayerID: id})
	}
	state, _ = mustApply(t, svc, state, StartChallengeRound{})

	if _, _, err := svc.Apply(state, ConfirmReveal{}); !errors.Is(err, ErrChallengeOpen) {
		t.Fatalf("reveal with open queue error = %v, want %v", err, ErrChallengeOpen)
	}

	state, evs := mustApply(t, svc, state, PlaceBet{Gap: 1})
	if state.CurrentChallengerIndex != len(state.ChallengeQueue) {
		t.Fatalf("cursor = %d, want %d", state.CurrentChallengerIndex, len(state.ChallengeQueue))
	}
	if !hasEvent(evs, EventChallengeClosed) {
		t.Fatalf("missing %s event", EventChallengeClosed)
	}
	if p := evs[1].Payload.(ChallengeClosedPayload); len(p.Skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 challengers", p.Skipped)
	}

	state, _ = mustApply(t, svc, state, ConfirmReveal{})
	if state.Phase != domain.PhaseReveal || !state.LastResult.Correct {
		t.Fatalf("phase = %s result = %+v", state.Phase, state.LastResult)
	}
}

func TestGuessClearsStaleChallengeState(t *testing.T) {
	svc := newTestService(1)
	state := playingState(timelineOf(1990), nil)
	state, _ = mustApply(t, svc, state, SetCurrentCard{Card: card("c", 2000)})
	state.Challenges = []domain.ChallengeRecord{{PlayerID: "p2", Gap: 0}}
	state.ChallengeQueue = []string{"p2"}
	state.CurrentChallengerIndex = 1

	state, _ = mustApply(t, svc, state, GuessGap{Gap: 1})
	if state.Challenges != nil || state.ChallengeQueue != nil || state.CurrentChallengerIndex != 0 {
		t.Fatalf("guess must clear stale challenge state")
	}
}
