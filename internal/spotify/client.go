package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/domain"
	"hitstory/internal/ports"
)

const (
	defaultAPIBase = "https://api.spotify.com/v1"
	defaultTries   = 5
)

var (
	ErrUnauthorized  = errors.New("spotify rejected the access token")
	ErrEmptyPlaylist = errors.New("playlist has no tracks")
)

// Client calls the Spotify Web API on behalf of one token provider.
type Client struct {
	base       string
	httpClient *http.Client
	tokens     ports.TokenProvider
	logger     runtime.Logger
	tries      uint
	newBackOff func() backoff.BackOff

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ports.CardSource = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithBackOff replaces the exponential retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) ClientOption {
	return func(c *Client) { c.newBackOff = newBackOff }
}

func NewClient(tokens ports.TokenProvider, logger runtime.Logger, rng *rand.Rand, opts ...ClientOption) *Client {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Client{
		base:       defaultAPIBase,
		httpClient: http.DefaultClient,
		tokens:     tokens,
		logger:     logger,
		tries:      defaultTries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		rng:        rng,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Playlist is the subset of playlist metadata the game needs.
type Playlist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type apiArtist struct {
	Name string `json:"name"`
}

type apiTrack struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	URI        string      `json:"uri"`
	DurationMS int         `json:"duration_ms"`
	Artists    []apiArtist `json:"artists"`
	Album      struct {
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// Playlist fetches a playlist's name and track count.
func (c *Client) Playlist(ctx context.Context, playlistID string) (Playlist, error) {
	q := url.Values{"fields": {"id,name,tracks.total"}}
	return retryGet[Playlist](ctx, c, "/playlists/"+url.PathEscape(playlistID), q)
}

// RandomCards draws up to count distinct tracks from a playlist at random
// offsets. Each track's year comes from the earliest matching release.
func (c *Client) RandomCards(ctx context.Context, playlistID string, count int) ([]domain.Card, error) {
	if count <= 0 {
		return nil, nil
	}
	pl, err := c.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	total := pl.Tracks.Total
	if total == 0 {
		return nil, ErrEmptyPlaylist
	}

	seen := map[string]bool{}
	var cards []domain.Card
	for attempts := 0; len(cards) < count && len(cards) < total && attempts < count*4; attempts++ {
		track, err := c.trackAt(ctx, playlistID, c.offset(total))
		if err != nil {
			return cards, err
		}
		if track == nil || track.ID == "" || seen[track.ID] {
			continue
		}
		seen[track.ID] = true

		if older, ok := c.earliestRelease(ctx, *track); ok {
			if older.ID != track.ID {
				c.logger.Debug("earliest release: %q %s replaced by %s", track.Name, track.Album.ReleaseDate, older.Album.ReleaseDate)
			}
			track = &older
		}
		card, ok := toCard(*track)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (c *Client) offset(total int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(total)
}

func (c *Client) trackAt(ctx context.Context, playlistID string, offset int) (*apiTrack, error) {
	q := url.Values{"limit": {"1"}, "offset": {strconv.Itoa(offset)}}
	page, err := retryGet[struct {
		Items []struct {
			Track *apiTrack `json:"track"`
		} `json:"items"`
	}](ctx, c, "/playlists/"+url.PathEscape(playlistID)+"/tracks", q)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return page.Items[0].Track, nil
}

// earliestRelease searches for the oldest release of the same recording:
// same primary artist and a duration within 30 seconds. Search failures are
// logged and reported as not found.
func (c *Client) earliestRelease(ctx context.Context, track apiTrack) (apiTrack, bool) {
	if len(track.Artists) == 0 {
		return apiTrack{}, false
	}
	artist := track.Artists[0].Name
	q := url.Values{
		"q":     {fmt.Sprintf("track:%s artist:%s", cleanTrackName(track.Name), artist)},
		"type":  {"track"},
		"limit": {"10"},
	}
	res, err := retryGet[struct {
		Tracks struct {
			Items []apiTrack `json:"items"`
		} `json:"tracks"`
	}](ctx, c, "/search", q)
	if err != nil {
		c.logger.Warn("earliest release search failed for %q: %v", track.Name, err)
		return apiTrack{}, false
	}
	return oldestMatch(res.Tracks.Items, artist, track.DurationMS)
}

func oldestMatch(items []apiTrack, artist string, durationMS int) (apiTrack, bool) {
	want := strings.ToLower(artist)
	var best apiTrack
	found := false
	for _, t := range items {
		if _, ok := releaseYear(t.Album.ReleaseDate); !ok {
			continue
		}
		diff := t.DurationMS - durationMS
		if diff <= -30000 || diff >= 30000 {
			continue
		}
		match := false
		for _, a := range t.Artists {
			match = match || strings.Contains(strings.ToLower(a.Name), want)
		}
		if !match {
			continue
		}
		// ISO dates of any precision ("1975", "1975-10", "1975-10-31") order lexically.
		if !found || t.Album.ReleaseDate < best.Album.ReleaseDate {
			best, found = t, true
		}
	}
	return best, found
}

func toCard(t apiTrack) (domain.Card, bool) {
	year, ok := releaseYear(t.Album.ReleaseDate)
	if !ok {
		return domain.Card{}, false
	}
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	card := domain.Card{
		ID:     t.ID,
		Title:  t.Name,
		Artist: strings.Join(names, ", "),
		Album:  t.Album.Name,
		Year:   year,
		URI:    t.URI,
	}
	if len(t.Album.Images) > 0 {
		card.Image = t.Album.Images[0].URL
	}
	return card, true
}

func releaseYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// retryGet issues a GET with bounded retries. Rate limits and server errors
// retry; other failures are permanent.
func retryGet[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		var out T
		err := c.do(ctx, http.MethodGet, path, query, nil, &out)
		return out, err
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.tries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("spotify GET %s failed, retrying in %s: %v", path, next, err)
		}),
	)
}

// do sends one request. Errors that must not be retried are wrapped with
// backoff.Permanent; callers outside retryGet should unwrap with errors.Is/As.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return backoff.Permanent(err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		reader = bytes.NewReader(data)
	}
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			return backoff.RetryAfter(secs)
		}
		return fmt.Errorf("spotify %s %s: rate limited", method, path)
	case resp.StatusCode >= 500:
		return fmt.Errorf("spotify %s %s: %s", method, path, resp.Status)
	case resp.StatusCode == http.StatusUnauthorized:
		return backoff.Permanent(ErrUnauthorized)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("spotify %s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(msg)))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
