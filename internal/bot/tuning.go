package bot

// Tuning shapes a brain's play.
type Tuning struct {
	// Accuracy is the chance of picking a correct gap when one exists.
	Accuracy float64
	// ChallengeRate is the chance of opting in to a challenge.
	ChallengeRate float64
	// SkipRate is the chance of paying to skip a card.
	SkipRate float64
	// AutoPlaceAt is the balance from which the seat buys an auto-place; 0 never does.
	AutoPlaceAt int
	// Omniscient brains see whether the pending guess is right and only challenge wrong ones.
	Omniscient bool
}

// DefaultTuning holds the tuning for each level.
var DefaultTuning = map[BotLevel]Tuning{
	BotLevelRandom: {
		Accuracy:      0,
		ChallengeRate: 0.3,
		SkipRate:      0.05,
	},
	BotLevelGood: {
		Accuracy:      0.65,
		ChallengeRate: 0.4,
		SkipRate:      0.1,
		AutoPlaceAt:   5,
	},
	BotLevelGod: {
		Accuracy:   1,
		Omniscient: true,
	},
}

// ForLevel returns the tuning of level, falling back to random play.
func ForLevel(level BotLevel) Tuning {
	if t, ok := DefaultTuning[level]; ok {
		return t
	}
	return DefaultTuning[BotLevelRandom]
}
