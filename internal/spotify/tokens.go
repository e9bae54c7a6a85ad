package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"hitstory/internal/ports"
)

// DefaultTokenKey is where a user's token is stored.
const DefaultTokenKey = "spotify_access_token"

// ErrNotLoggedIn is returned when no token has been saved yet.
var ErrNotLoggedIn = errors.New("spotify login required")

// Tokens stores one user's token and refreshes it on demand.
type Tokens struct {
	mu    sync.Mutex
	conf  *oauth2.Config
	store ports.SnapshotPort
	key   string
}

var _ ports.TokenProvider = (*Tokens)(nil)

// NewTokens keeps the token under key in store. conf may be nil, in which
// case expired tokens are returned as ErrNotLoggedIn instead of refreshed.
func NewTokens(conf *oauth2.Config, store ports.SnapshotPort, key string) *Tokens {
	if key == "" {
		key = DefaultTokenKey
	}
	return &Tokens{conf: conf, store: store, key: key}
}

// Save stores tok, replacing any previous token.
func (t *Tokens) Save(ctx context.Context, tok *oauth2.Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(ctx, tok)
}

// Forget drops the stored token.
func (t *Tokens) Forget(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Clear(ctx, t.key)
}

// Token returns a valid token, refreshing and re-saving it when expired.
func (t *Tokens) Token(ctx context.Context) (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.store.Get(ctx, t.key)
	if errors.Is(err, ports.ErrSnapshotNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.Valid() {
		return &tok, nil
	}
	if t.conf == nil || tok.RefreshToken == "" {
		return nil, ErrNotLoggedIn
	}

	fresh, err := t.conf.TokenSource(ctx, &tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}
	if err := t.save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (t *Tokens) AccessToken(ctx context.Context) (string, error) {
	tok, err := t.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (t *Tokens) save(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("token has no access token")
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := t.store.Set(ctx, t.key, data); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}
