package bot

import (
	"context"
	"fmt"

	"hitstory/internal/app"
	"hitstory/internal/ports"
)

// DealInitialCards gives one starting card to every player whose timeline is empty.
func DealInitialCards(ctx context.Context, d Dispatcher, source ports.CardSource, sourceID string) error {
	state := d.State()
	var ids []string
	for _, p := range state.Players {
		if len(p.Timeline) == 0 {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	cards, err := source.RandomCards(ctx, sourceID, len(ids))
	if err != nil {
		return fmt.Errorf("fetch initial cards: %w", err)
	}
	if len(cards) < len(ids) {
		return fmt.Errorf("%w: got %d cards for %d players", ErrSourceExhausted, len(cards), len(ids))
	}

	deals := make([]app.InitialDeal, len(ids))
	for i, id := range ids {
		deals[i] = app.InitialDeal{PlayerID: id, Card: cards[i]}
	}
	res, err := d.Dispatch(ctx, app.DistributeInitialCards{Deals: deals})
	if err != nil {
		return err
	}
	if res.Rejected != nil {
		return fmt.Errorf("deal initial cards: %w", res.Rejected)
	}
	return nil
}
