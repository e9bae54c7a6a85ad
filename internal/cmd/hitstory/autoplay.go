package hitstory

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/app/session"
	"hitstory/internal/bot"
	"hitstory/internal/catalog"
	"hitstory/internal/domain"
)

// autoplay seats bots when the table is empty, starts the game if needed and
// lets the driver play up to cfg.Autoplay accepted actions.
func autoplay(ctx context.Context, cfg Config, s *session.Session, src *sources, logger runtime.Logger, rng *rand.Rand, out io.Writer) error {
	levels := map[string]bot.BotLevel{}
	if s.State().Phase == domain.PhaseSetup {
		var err error
		if levels, err = seat(ctx, cfg, s, rng); err != nil {
			return err
		}
		sourceID := cfg.SourceID
		if sourceID == "" {
			sourceID = catalog.SourceAll
		}
		source, name, err := src.forID(ctx, sourceID)
		if err != nil {
			return err
		}
		res, err := s.Dispatch(ctx, app.StartGame{SourceID: sourceID, SourceName: name})
		if err != nil {
			return err
		}
		if res.Rejected != nil {
			return fmt.Errorf("start game: %w", res.Rejected)
		}
		if err := bot.DealInitialCards(ctx, s, source, sourceID); err != nil {
			return err
		}
	}

	state := s.State()
	source, _, err := src.forID(ctx, state.Settings.SourceID)
	if err != nil {
		return err
	}
	fallback, _ := bot.ParseLevel(cfg.Level)
	agents := make([]*bot.Agent, 0, len(state.Players))
	for _, p := range state.Players {
		level, ok := levels[p.ID]
		if !ok {
			level = fallback
		}
		brain, err := bot.NewBrain(level, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return err
		}
		agents = append(agents, &bot.Agent{ID: p.ID, Name: p.Name, Strategy: brain})
	}

	driver := bot.NewDriver(s, source, logger, rand.New(rand.NewSource(rng.Int63())), agents...)
	sum, err := driver.Run(ctx, cfg.Autoplay)
	printSummary(out, sum)
	return err
}

// seat adds the named players, or bot identities when no names were given,
// and returns each new seat's bot level.
func seat(ctx context.Context, cfg Config, s *session.Session, rng *rand.Rand) (map[string]bot.BotLevel, error) {
	levels := map[string]bot.BotLevel{}
	if len(s.State().Players) > 0 {
		return levels, nil
	}
	named, _ := bot.ParseLevel(cfg.Level)

	type newSeat struct {
		add   app.AddPlayer
		level bot.BotLevel
	}
	var seats []newSeat
	for _, name := range cfg.Players {
		seats = append(seats, newSeat{add: app.AddPlayer{Name: name}, level: named})
	}
	if len(seats) == 0 {
		for i := 0; i < defaultSeats; i++ {
			id := bot.GetBotIdentity(i, rng)
			level, err := bot.ParseLevel(id.Level)
			if err != nil {
				return nil, err
			}
			seats = append(seats, newSeat{add: app.AddPlayer{Name: id.DisplayName, Difficulty: id.Difficulty}, level: level})
		}
	}

	for _, ns := range seats {
		res, err := s.Dispatch(ctx, ns.add)
		if err != nil {
			return nil, err
		}
		if res.Rejected != nil {
			return nil, fmt.Errorf("seat %q: %w", ns.add.Name, res.Rejected)
		}
		players := res.State.Players
		levels[players[len(players)-1].ID] = ns.level
	}
	return levels, nil
}

func printSummary(out io.Writer, sum bot.Summary) {
	fmt.Fprintf(out, "steps=%d rounds=%d rejected=%d finished=%t\n", sum.Steps, sum.Rounds, sum.Rejected, sum.Finished)
	for _, row := range sum.Standings {
		mark := ""
		if row.Final {
			mark = " *"
		}
		fmt.Fprintf(out, "%d. %-20s cards=%-3d tokens=%d%s\n", row.Place, row.Name, row.Cards, row.Tokens, mark)
	}
}
