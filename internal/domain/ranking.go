package domain

import "sort"

// FindWinnerCandidate returns the first unfinished player whose timeline reached target.
func FindWinnerCandidate(players []Player, target int) (int, bool) {
	for i, p := range players {
		if !p.HasWon && len(p.Timeline) >= target {
			return i, true
		}
	}
	return -1, false
}

// FinishedCount returns how many players already have a rank.
func FinishedCount(players []Player) int {
	n := 0
	for _, p := range players {
		if p.HasWon {
			n++
		}
	}
	return n
}

// RemainingContestants counts unfinished players other than excludeID.
func RemainingContestants(players []Player, excludeID string) int {
	n := 0
	for _, p := range players {
		if !p.HasWon && p.ID != excludeID {
			n++
		}
	}
	return n
}

// NextUnfinished returns the index after from, skipping finished players.
// The search wraps around and stops after len(players) steps, so it terminates
// even when every player has finished; in that case the last probed index is returned.
func NextUnfinished(players []Player, from int) int {
	n := len(players)
	if n == 0 {
		return 0
	}
	next := (from + 1) % n
	if next < 0 {
		next += n
	}
	for steps := 0; players[next].HasWon && steps < n; steps++ {
		next = (next + 1) % n
	}
	return next
}

// Standing is one row of the scoreboard.
type Standing struct {
	PlayerID string
	Name     string
	Cards    int
	Tokens   int
	Place    int
	Final    bool
}

// Standings lists finished players by rank, then the rest by timeline length.
// Unfinished players get a provisional place after every finished player and
// every unfinished player holding more cards.
func Standings(players []Player) []Standing {
	finished := FinishedCount(players)
	rows := make([]Standing, 0, len(players))
	for _, p := range players {
		row := Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Cards:    len(p.Timeline),
			Tokens:   p.Tokens,
		}
		if p.HasWon {
			row.Place = p.Rank
			row.Final = true
		} else {
			ahead := 0
			for _, other := range players {
				if !other.HasWon && len(other.Timeline) > len(p.Timeline) {
					ahead++
				}
			}
			row.Place = finished + 1 + ahead
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Place != rows[j].Place {
			return rows[i].Place < rows[j].Place
		}
		return rows[i].Final && !rows[j].Final
	})
	return rows
}
