package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hitstory/internal/ports"
)

// ErrNoActiveDevice is returned by Position when nothing is playing.
var ErrNoActiveDevice = errors.New("no active playback device")

// Player controls playback on a Spotify Connect device.
type Player struct {
	client *Client
}

var _ ports.PlaybackController = (*Player)(nil)

func NewPlayer(client *Client) *Player {
	return &Player{client: client}
}

func deviceQuery(deviceID string) url.Values {
	q := url.Values{}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return q
}

// Play starts cardURI from the beginning. An empty cardURI resumes.
func (p *Player) Play(ctx context.Context, cardURI, deviceID string) error {
	var body any
	if cardURI != "" {
		body = map[string][]string{"uris": {cardURI}}
	}
	return p.client.do(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), body, nil)
}

func (p *Player) Pause(ctx context.Context, deviceID string) error {
	return p.client.do(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil, nil)
}

func (p *Player) Seek(ctx context.Context, deviceID string, position time.Duration) error {
	q := deviceQuery(deviceID)
	q.Set("position_ms", strconv.FormatInt(position.Milliseconds(), 10))
	return p.client.do(ctx, http.MethodPut, "/me/player/seek", q, nil, nil)
}

func (p *Player) Position(ctx context.Context) (time.Duration, error) {
	var state *struct {
		ProgressMS int64 `json:"progress_ms"`
	}
	if err := p.client.do(ctx, http.MethodGet, "/me/player", nil, nil, &state); err != nil {
		return 0, err
	}
	if state == nil {
		return 0, ErrNoActiveDevice
	}
	return time.Duration(state.ProgressMS) * time.Millisecond, nil
}
