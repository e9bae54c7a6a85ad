package domain

import (
	"reflect"
	"testing"
)

func cardsOf(years ...int) []Card {
	out := make([]Card, len(years))
	for i, y := range years {
		out[i] = Card{ID: "c" + string(rune('a'+i)), Year: y}
	}
	return out
}

func years(timeline []Card) []int {
	out := make([]int, len(timeline))
	for i, c := range timeline {
		out[i] = c.Year
	}
	return out
}

func TestIsCorrectPlacement(t *testing.T) {
	timeline := cardsOf(1990, 2005)
	tests := []struct {
		name string
		gap  int
		year int
		want bool
	}{
		{name: "between neighbours", gap: 1, year: 1998, want: true},
		{name: "before both at middle gap", gap: 1, year: 1985, want: false},
		{name: "after both at middle gap", gap: 1, year: 2010, want: false},
		{name: "front", gap: 0, year: 1985, want: true},
		{name: "front too late", gap: 0, year: 1991, want: false},
		{name: "back", gap: 2, year: 2010, want: true},
		{name: "back too early", gap: 2, year: 2004, want: false},
		{name: "tie with previous", gap: 1, year: 1990, want: true},
		{name: "tie with next", gap: 1, year: 2005, want: true},
		{name: "tie at front", gap: 0, year: 1990, want: true},
		{name: "negative gap", gap: -1, year: 1980, want: false},
		{name: "gap past end", gap: 3, year: 2020, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrectPlacement(timeline, tt.gap, tt.year); got != tt.want {
				t.Fatalf("IsCorrectPlacement(gap=%d, year=%d) = %v, want %v", tt.gap, tt.year, got, tt.want)
			}
		})
	}
}

func TestIsCorrectPlacementEmptyTimeline(t *testing.T) {
	if !IsCorrectPlacement(nil, 0, 1970) {
		t.Fatalf("any year belongs in an empty timeline")
	}
	if IsCorrectPlacement(nil, 1, 1970) {
		t.Fatalf("gap 1 does not exist in an empty timeline")
	}
}

func TestCorrectGaps(t *testing.T) {
	timeline := cardsOf(1980, 1990, 1990, 2000)
	if got, want := CorrectGaps(timeline, 1990), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("CorrectGaps() = %v, want %v", got, want)
	}
	if got, want := CorrectGaps(timeline, 1975), []int{0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("CorrectGaps() = %v, want %v", got, want)
	}
}

func TestInsertAtDoesNotAlias(t *testing.T) {
	base := cardsOf(1980, 2000)
	got := InsertAt(base, 1, Card{ID: "new", Year: 1990})
	if want := []int{1980, 1990, 2000}; !reflect.DeepEqual(years(got), want) {
		t.Fatalf("InsertAt() years = %v, want %v", years(got), want)
	}
	if want := []int{1980, 2000}; !reflect.DeepEqual(years(base), want) {
		t.Fatalf("InsertAt() modified input: %v", years(base))
	}
}

func TestInsertSorted(t *testing.T) {
	base := cardsOf(1970, 1999, 2010)
	got := InsertSorted(base, Card{ID: "new", Year: 1985})
	if want := []int{1970, 1985, 1999, 2010}; !reflect.DeepEqual(years(got), want) {
		t.Fatalf("InsertSorted() years = %v, want %v", years(got), want)
	}
	if !IsSorted(got) {
		t.Fatalf("InsertSorted() result not sorted")
	}
	if len(base) != 3 {
		t.Fatalf("InsertSorted() modified input")
	}
}

func TestIsSorted(t *testing.T) {
	if !IsSorted(cardsOf(1990, 1990, 1991)) {
		t.Fatalf("equal years are sorted")
	}
	if IsSorted(cardsOf(1991, 1990)) {
		t.Fatalf("descending years are not sorted")
	}
}
