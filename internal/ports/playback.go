package ports

import (
	"context"
	"time"
)

// PlaybackController plays a card's audio on an output device.
type PlaybackController interface {
	Play(ctx context.Context, cardURI, deviceID string) error
	Pause(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, deviceID string, position time.Duration) error
	// Position reports the current playback offset.
	Position(ctx context.Context) (time.Duration, error)
}
