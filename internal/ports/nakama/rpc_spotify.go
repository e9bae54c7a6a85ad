package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/spotify"
)

var errSpotifyDisabled = errors.New("spotify is not configured")

func (m *Module) spotifyAuth(nk StorageEngine, userID string) (*spotify.Auth, error) {
	if !m.env.SpotifyEnabled() {
		return nil, errSpotifyDisabled
	}
	return spotify.NewAuth(m.env.SpotifyClientID, m.env.SpotifyRedirectURI, []byte(m.env.StateSecret),
		NewNakamaSnapshotAdapter(nk, userID), m.authOpts...)
}

func (m *Module) spotifyTokens(nk StorageEngine, userID string) (*spotify.Tokens, error) {
	auth, err := m.spotifyAuth(nk, userID)
	if err != nil {
		return nil, err
	}
	return spotify.NewTokens(auth.Config(), NewNakamaSnapshotAdapter(nk, userID), spotifyTokenKey), nil
}

func (m *Module) spotifyClient(logger runtime.Logger, nk StorageEngine, userID string) (*spotify.Client, error) {
	tokens, err := m.spotifyTokens(nk, userID)
	if err != nil {
		return nil, err
	}
	return spotify.NewClient(tokens, logger, rand.New(rand.NewSource(m.seed())), m.clientOpts...), nil
}

// RpcSpotifyLoginURL starts a Spotify login for the caller.
// Returns: {"url": "..."}
func (m *Module) RpcSpotifyLoginURL(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	auth, err := m.spotifyAuth(nk, userID)
	if err != nil {
		logger.Warn("RpcSpotifyLoginURL [User:%s]: %v", userID, err)
		return "", runtime.NewError("Spotify is not configured", codeFailedPrecondition)
	}
	url, err := auth.LoginURL(ctx, userID)
	if err != nil {
		logger.Error("RpcSpotifyLoginURL [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	out, _ := json.Marshal(map[string]string{"url": url})
	return string(out), nil
}

// RpcSpotifyExchange finishes a login with the code and state from the callback.
// Payload: {"code": "...", "state": "..."}
func (m *Module) RpcSpotifyExchange(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Code == "" || req.State == "" {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	auth, err := m.spotifyAuth(nk, userID)
	if err != nil {
		return "", runtime.NewError("Spotify is not configured", codeFailedPrecondition)
	}
	tok, err := auth.Exchange(ctx, userID, req.Code, req.State)
	switch {
	case errors.Is(err, spotify.ErrInvalidState), errors.Is(err, spotify.ErrMissingVerifier):
		return "", runtime.NewError("Login expired, try again", codeInvalidArgument)
	case err != nil:
		logger.Error("RpcSpotifyExchange [User:%s]: %v", userID, err)
		return "", runtime.NewError("Spotify login failed", codeUnavailable)
	}

	tokens := spotify.NewTokens(auth.Config(), NewNakamaSnapshotAdapter(nk, userID), spotifyTokenKey)
	if err := tokens.Save(ctx, tok); err != nil {
		logger.Error("RpcSpotifyExchange [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	logger.Info("RpcSpotifyExchange [User:%s]: logged in", userID)
	return `{"ok":true}`, nil
}
