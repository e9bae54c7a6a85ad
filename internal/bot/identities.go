package bot

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"hitstory/internal/domain"
)

// BotIdentity is a named bot seat.
type BotIdentity struct {
	DisplayName string            `json:"display_name"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	Level       string            `json:"level"` // "random", "good", "god"
}

var (
	botIdentities []BotIdentity
	loadOnce      sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var ids []BotIdentity
		if err := json.Unmarshal(data, &ids); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		for _, id := range ids {
			if _, err := ParseLevel(id.Level); err != nil {
				loadErr = fmt.Errorf("bot %q: %w", id.DisplayName, err)
				return
			}
		}
		botIdentities = ids
	})
	return loadErr
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
// Without a loaded pool it makes up a friendly name and plays at random level.
func GetBotIdentity(index int, rng *rand.Rand) BotIdentity {
	if len(botIdentities) == 0 {
		return BotIdentity{
			DisplayName: FriendlyName(rng),
			Difficulty:  domain.DifficultyNormal,
			Level:       BotLevelRandom.String(),
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// FriendlyName returns a name like "Swift Otter 42".
func FriendlyName(rng *rand.Rand) string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	adj := adjectives[rng.Intn(len(adjectives))]
	noun := nouns[rng.Intn(len(nouns))]
	return fmt.Sprintf("%s %s %d", adj, noun, rng.Intn(100))
}
