package domain

import (
	"slices"
	"sort"
)

// ValidGap reports whether gap addresses an insertion point of timeline.
func ValidGap(timeline []Card, gap int) bool {
	return gap >= 0 && gap <= len(timeline)
}

// IsCorrectPlacement reports whether a card of the given year belongs at gap.
// Equal years on either side are accepted.
func IsCorrectPlacement(timeline []Card, gap int, year int) bool {
	if !ValidGap(timeline, gap) {
		return false
	}
	if gap > 0 && year < timeline[gap-1].Year {
		return false
	}
	if gap < len(timeline) && year > timeline[gap].Year {
		return false
	}
	return true
}

// CorrectGaps returns every gap where a card of the given year would be accepted.
func CorrectGaps(timeline []Card, year int) []int {
	var gaps []int
	for g := 0; g <= len(timeline); g++ {
		if IsCorrectPlacement(timeline, g, year) {
			gaps = append(gaps, g)
		}
	}
	return gaps
}

// InsertAt returns a new timeline with card inserted at gap.
func InsertAt(timeline []Card, gap int, card Card) []Card {
	out := make([]Card, 0, len(timeline)+1)
	out = append(out, timeline[:gap]...)
	out = append(out, card)
	return append(out, timeline[gap:]...)
}

// InsertSorted returns a new timeline with card appended and the result re-sorted by year.
func InsertSorted(timeline []Card, card Card) []Card {
	out := append(slices.Clone(timeline), card)
	SortTimeline(out)
	return out
}

// SortTimeline orders a timeline by ascending year, keeping the order of equal years.
func SortTimeline(timeline []Card) {
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Year < timeline[j].Year
	})
}

// IsSorted reports whether timeline is non-decreasing by year.
func IsSorted(timeline []Card) bool {
	for i := 1; i < len(timeline); i++ {
		if timeline[i].Year < timeline[i-1].Year {
			return false
		}
	}
	return true
}
