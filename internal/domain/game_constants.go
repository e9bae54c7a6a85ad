package domain

const (
	// DefaultTargetScore is the timeline length that wins when none is configured.
	DefaultTargetScore = 10
	// MaxPlayers caps the number of seats at one table.
	MaxPlayers = 8

	// SkipCost is the token price of discarding the current card.
	SkipCost = 1
	// AutoPlaceCost is the token price of placing the current card correctly without guessing.
	AutoPlaceCost = 3
	// ChallengeStake is what a challenger forfeits when the bet loses.
	ChallengeStake = 1
)

// DefaultColors is the palette new players are assigned from.
var DefaultColors = []string{"#10B981", "#F59E0B", "#3B82F6", "#EF4444", "#8B5CF6", "#EC4899", "#06B6D4", "#84CC16"}
