// Package catalog is an offline CardSource backed by an embedded list of releases.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"sync"

	"hitstory/internal/domain"
	"hitstory/internal/ports"
)

// SourceAll draws from every release in the catalog.
const SourceAll = "all"

const decadePrefix = "decade-"

// ErrUnknownSource is returned for a source id the catalog cannot serve.
var ErrUnknownSource = errors.New("unknown catalog source")

//go:embed data/releases.json
var releasesJSON []byte

// Source describes one drawable subset of the catalog.
type Source struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog deals shuffled cards. Safe for concurrent use.
type Catalog struct {
	mu    sync.Mutex
	rng   *rand.Rand
	cards []domain.Card
}

var _ ports.CardSource = (*Catalog)(nil)

// New parses the embedded releases. rng drives every shuffle.
func New(rng *rand.Rand) (*Catalog, error) {
	return FromJSON(releasesJSON, rng)
}

// FromJSON builds a catalog from a JSON array of cards.
func FromJSON(data []byte, rng *rand.Rand) (*Catalog, error) {
	var cards []domain.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if c.ID == "" || c.Year == 0 {
			return nil, fmt.Errorf("catalog entry %q: id and year are required", c.Title)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Catalog{rng: rng, cards: cards}, nil
}

// Len reports the number of releases.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Sources lists "all" followed by one source per decade present in the catalog.
func (c *Catalog) Sources() []Source {
	counts := map[int]int{}
	for _, card := range c.cards {
		counts[card.Year/10*10]++
	}
	decades := make([]int, 0, len(counts))
	for d := range counts {
		decades = append(decades, d)
	}
	slices.Sort(decades)

	out := []Source{{ID: SourceAll, Name: "All decades", Count: len(c.cards)}}
	for _, d := range decades {
		out = append(out, Source{
			ID:    decadePrefix + strconv.Itoa(d),
			Name:  fmt.Sprintf("The %ds", d),
			Count: counts[d],
		})
	}
	return out
}

// SourceName returns the display name for sourceID.
func (c *Catalog) SourceName(sourceID string) (string, error) {
	for _, s := range c.Sources() {
		if s.ID == normalize(sourceID) {
			return s.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, sourceID)
}

// RandomCards returns up to count distinct cards from sourceID in random order.
// An empty sourceID means SourceAll.
func (c *Catalog) RandomCards(ctx context.Context, sourceID string, count int) ([]domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pool, err := c.filter(sourceID)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	c.mu.Lock()
	c.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	c.mu.Unlock()

	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

func (c *Catalog) filter(sourceID string) ([]domain.Card, error) {
	id := normalize(sourceID)
	if id == SourceAll {
		return slices.Clone(c.cards), nil
	}
	rest, ok := strings.CutPrefix(id, decadePrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceID)
	}
	decade, err := strconv.Atoi(rest)
	if err != nil || decade%10 != 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceID)
	}
	var out []domain.Card
	for _, card := range c.cards {
		if card.Year >= decade && card.Year < decade+10 {
			out = append(out, card)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q has no releases", ErrUnknownSource, sourceID)
	}
	return out, nil
}

func normalize(sourceID string) string {
	id := strings.ToLower(strings.TrimSpace(sourceID))
	if id == "" {
		return SourceAll
	}
	return id
}
