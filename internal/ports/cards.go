package ports

import (
	"context"

	"hitstory/internal/domain"
)

// CardSource draws cards from a content source such as a playlist.
type CardSource interface {
	// RandomCards returns up to count distinct cards from sourceID in random order.
	RandomCards(ctx context.Context, sourceID string, count int) ([]domain.Card, error)
}
