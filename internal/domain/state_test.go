package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func sampleState() *GameState {
	gap := 1
	return &GameState{
		Players: []Player{
			{ID: "p1", Name: "Ana", Timeline: cardsOf(1980, 1999), Tokens: 2, Difficulty: DifficultyNormal, Color: "#e6194b"},
			{ID: "p2", Name: "Ben", Timeline: cardsOf(2001), Tokens: 5, Difficulty: DifficultyPro, Color: "#3cb44b"},
		},
		ActivePlayerIndex:      0,
		Phase:                  PhaseChallengePlacement,
		CurrentCard:            &Card{ID: "x", Title: "Song", Year: 1990},
		PendingGap:             &gap,
		Challenges:             []ChallengeRecord{{PlayerID: "p2", Gap: 0}},
		ChallengeQueue:         []string{"p2"},
		CurrentChallengerIndex: 1,
		LastResult:             &RevealResult{Correct: true, ActualYear: 1970, TokenChanges: map[string]int{"p2": -1}},
		Settings:               Settings{TargetScore: 10, SourceID: "list", SourceName: "Hits"},
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := sampleState()
	cp := orig.Clone()
	if !reflect.DeepEqual(orig, cp) {
		t.Fatalf("Clone() differs from original")
	}

	cp.Players[0].Timeline[0].Year = 1
	cp.Players[1].Tokens = 0
	*cp.PendingGap = 2
	cp.CurrentCard.Year = 2
	cp.Challenges[0].Gap = 2
	cp.ChallengeQueue[0] = "zz"
	cp.LastResult.TokenChanges["p2"] = 7

	if orig.Players[0].Timeline[0].Year != 1980 || orig.Players[1].Tokens != 5 {
		t.Fatalf("Clone() shares player memory")
	}
	if *orig.PendingGap != 1 || orig.CurrentCard.Year != 1990 {
		t.Fatalf("Clone() shares round pointers")
	}
	if orig.Challenges[0].Gap != 0 || orig.ChallengeQueue[0] != "p2" {
		t.Fatalf("Clone() shares challenge slices")
	}
	if orig.LastResult.TokenChanges["p2"] != -1 {
		t.Fatalf("Clone() shares token change map")
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	states := map[string]*GameState{
		"fresh":  NewGameState(),
		"midway": sampleState(),
	}
	for name, s := range states {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var got GameState
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(s, &got) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", &got, s)
			}
		})
	}
}

func TestStateJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(sampleState())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"players", "activePlayerIndex", "currentPhase", "currentCard", "pendingPlacement", "challengerIds", "challengeQueue", "currentChallengerIndex", "lastResult", "settings"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("snapshot missing key %q", key)
		}
	}
}

func TestClearRound(t *testing.T) {
	s := sampleState()
	s.ClearRound()
	if s.CurrentCard != nil || s.PendingGap != nil || s.Challenges != nil || s.ChallengeQueue != nil || s.CurrentChallengerIndex != 0 || s.LastResult != nil {
		t.Fatalf("ClearRound() left round data: %+v", s)
	}
	if len(s.Players) != 2 || s.Phase != PhaseChallengePlacement {
		t.Fatalf("ClearRound() touched game data")
	}
}

func TestGapClaimedAndOccupiedSlots(t *testing.T) {
	s := sampleState()
	if !s.GapClaimed(1) || !s.GapClaimed(0) || s.GapClaimed(2) {
		t.Fatalf("GapClaimed() mismatch")
	}
	if got := s.OccupiedSlots(); got != 2 {
		t.Fatalf("OccupiedSlots() = %d, want 2", got)
	}
	if !s.HasBet("p2") || s.HasBet("p1") {
		t.Fatalf("HasBet() mismatch")
	}
	if id, ok := s.CurrentChallengerID(); ok {
		t.Fatalf("CurrentChallengerID() = %q, want exhausted queue", id)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameState)
		want   error
	}{
		{name: "valid", mutate: func(*GameState) {}, want: nil},
		{name: "unsorted timeline", mutate: func(s *GameState) { s.Players[0].Timeline = cardsOf(2000, 1990) }, want: ErrTimelineUnsorted},
		{name: "negative tokens", mutate: func(s *GameState) { s.Players[1].Tokens = -1 }, want: ErrNegativeTokens},
		{name: "rank without finish", mutate: func(s *GameState) { s.Players[0].Rank = 1 }, want: ErrRankWithoutFinish},
		{name: "duplicate bet", mutate: func(s *GameState) {
			s.Challenges = append(s.Challenges, ChallengeRecord{PlayerID: "p2", Gap: 2})
		}, want: ErrDuplicateBet},
		{name: "cursor past queue", mutate: func(s *GameState) { s.CurrentChallengerIndex = 2 }, want: ErrCursorOutOfRange},
		{name: "active out of range", mutate: func(s *GameState) { s.ActivePlayerIndex = 2 }, want: ErrActiveOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleState()
			tt.mutate(s)
			if err := s.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCardInPlay(t *testing.T) {
	cur := Card{ID: "cur", Year: 2000}
	s := &GameState{
		Players:     []Player{{ID: "p1", Timeline: []Card{{ID: "a", Year: 1990}}}, {ID: "p2"}},
		CurrentCard: &cur,
	}
	for id, want := range map[string]bool{"a": true, "cur": true, "b": false} {
		if got := s.CardInPlay(id); got != want {
			t.Fatalf("CardInPlay(%q) = %v, want %v", id, got, want)
		}
	}
}
