// Package spotify talks to the Spotify accounts service and Web API: PKCE
// login, token refresh, playlist card draws and device playback.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"hitstory/internal/ports"
)

const (
	defaultAuthURL  = "https://accounts.spotify.com/authorize"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	stateTTL       = 10 * time.Minute
	verifierPrefix = "spotify_pkce_"
)

// Scopes are the permissions requested at login.
var Scopes = []string{
	"streaming",
	"user-read-email",
	"user-read-private",
	"user-modify-playback-state",
	"user-read-playback-state",
}

var (
	ErrInvalidState    = errors.New("invalid login state")
	ErrMissingVerifier = errors.New("login verifier not found")
)

// Auth runs the authorization-code flow with PKCE. The state parameter is an
// HS256 token naming the user and a nonce; the verifier is parked in a
// SnapshotPort under that nonce until the callback arrives.
type Auth struct {
	conf   *oauth2.Config
	secret []byte
	store  ports.SnapshotPort
	now    func() time.Time
}

// AuthOption configures an Auth.
type AuthOption func(*Auth)

// WithEndpoint points the flow at a different accounts service.
func WithEndpoint(authURL, tokenURL string) AuthOption {
	return func(a *Auth) {
		a.conf.Endpoint.AuthURL = authURL
		a.conf.Endpoint.TokenURL = tokenURL
	}
}

func NewAuth(clientID, redirectURI string, secret []byte, store ports.SnapshotPort, opts ...AuthOption) (*Auth, error) {
	if clientID == "" {
		return nil, fmt.Errorf("spotify client id is required")
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("state secret is required")
	}
	if store == nil {
		return nil, fmt.Errorf("verifier store is required")
	}
	a := &Auth{
		conf: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Scopes:      Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   defaultAuthURL,
				TokenURL:  defaultTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		secret: secret,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config exposes the oauth2 config for token refresh.
func (a *Auth) Config() *oauth2.Config {
	return a.conf
}

type pendingLogin struct {
	UserID   string `json:"user_id"`
	Verifier string `json:"verifier"`
}

// LoginURL starts a login for userID and returns the authorization URL.
func (a *Auth) LoginURL(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	nonce := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	claims := jwt.MapClaims{
		"sub":   userID,
		"nonce": nonce,
		"exp":   a.now().Add(stateTTL).Unix(),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}

	data, err := json.Marshal(pendingLogin{UserID: userID, Verifier: verifier})
	if err != nil {
		return "", err
	}
	if err := a.store.Set(ctx, verifierPrefix+nonce, data); err != nil {
		return "", fmt.Errorf("store verifier: %w", err)
	}

	return a.conf.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("show_dialog", "true"),
	), nil
}

// Exchange completes the login started by LoginURL. The verifier is consumed
// whether or not the exchange succeeds.
func (a *Auth) Exchange(ctx context.Context, userID, code, state string) (*oauth2.Token, error) {
	nonce, err := a.verifyState(userID, state)
	if err != nil {
		return nil, err
	}

	key := verifierPrefix + nonce
	data, err := a.store.Get(ctx, key)
	if errors.Is(err, ports.ErrSnapshotNotFound) {
		return nil, ErrMissingVerifier
	}
	if err != nil {
		return nil, fmt.Errorf("load verifier: %w", err)
	}
	if err := a.store.Clear(ctx, key); err != nil {
		return nil, fmt.Errorf("clear verifier: %w", err)
	}

	var pending pendingLogin
	if err := json.Unmarshal(data, &pending); err != nil || pending.UserID != userID {
		return nil, ErrMissingVerifier
	}

	tok, err := a.conf.Exchange(ctx, code, oauth2.VerifierOption(pending.Verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

func (a *Auth) verifyState(userID, state string) (string, error) {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidState
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidState
	}
	sub, _ := claims["sub"].(string)
	nonce, _ := claims["nonce"].(string)
	if sub != userID || nonce == "" {
		return "", ErrInvalidState
	}
	return nonce, nil
}
