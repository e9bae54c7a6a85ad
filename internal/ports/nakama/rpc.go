package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/app/session"
	"hitstory/internal/bot"
	"hitstory/internal/catalog"
	"hitstory/internal/config"
	"hitstory/internal/domain"
	"hitstory/internal/ports"
	"hitstory/internal/spotify"
)

// drawBatch is how many candidates a draw fetches to find one not already in play.
const drawBatch = 5

// Module holds what the RPCs share. Each call loads the caller's game from
// storage, applies one request and writes it back.
type Module struct {
	env     config.Env
	game    *config.GameConfig
	catalog *catalog.Catalog
	seed    func() int64

	authOpts   []spotify.AuthOption
	clientOpts []spotify.ClientOption
}

// NewModule builds the RPC module. game may be nil for default rules.
func NewModule(env config.Env, game *config.GameConfig, cat *catalog.Catalog) *Module {
	return &Module{
		env:     env,
		game:    game,
		catalog: cat,
		seed:    func() int64 { return time.Now().UnixNano() },
	}
}

// RegisterRPCs registers every game and Spotify RPC.
func RegisterRPCs(initializer runtime.Initializer, m *Module) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcLoad:        m.RpcLoad,
		RpcDispatch:    m.RpcDispatch,
		RpcNewGame:     m.RpcNewGame,
		RpcStandings:   m.RpcStandings,
		RpcDrawCard:    m.RpcDrawCard,
		RpcSpotifyURL:  m.RpcSpotifyLoginURL,
		RpcSpotifyAuth: m.RpcSpotifyExchange,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

type rpcResponse struct {
	State    *domain.GameState `json:"state"`
	Events   []app.Event       `json:"events,omitempty"`
	Rejected string            `json:"rejected,omitempty"`
}

func respond(res rpcResponse) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return string(data), nil
}

func userIDFrom(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", codeUnauthenticated)
	}
	return userID, nil
}

// openSession restores the caller's game.
func (m *Module) openSession(ctx context.Context, logger runtime.Logger, nk StorageEngine, userID string) (*session.Session, error) {
	svc := app.NewService(rand.New(rand.NewSource(m.seed())), app.WithRules(m.game.Rules()))
	s := session.New(svc, NewNakamaSnapshotAdapter(nk, userID), logger, session.WithKey(m.env.SnapshotKey))
	if _, err := s.Restore(ctx); err != nil {
		logger.Error("Failed to restore game: %v", err)
		return nil, runtime.NewError("Failed to load game", codeInternal)
	}
	return s, nil
}

// RpcLoad returns the caller's current game.
func (m *Module) RpcLoad(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	logger = logger.WithField("user_id", userID)
	s, err := m.openSession(ctx, logger, nk, userID)
	if err != nil {
		return "", err
	}
	return respond(rpcResponse{State: s.State()})
}

// RpcDispatch applies one action.
// Payload: {"type": "<action>", "payload": {...}}
// A rejected action is not an RPC error; the response names the reason.
func (m *Module) RpcDispatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	action, err := app.DecodeAction([]byte(payload))
	if err != nil {
		logger.Debug("RpcDispatch [User:%s]: bad payload: %v", userID, err)
		return "", runtime.NewError("Invalid action", codeInvalidArgument)
	}
	logger = logger.WithFields(map[string]interface{}{"user_id": userID, "action": string(action.Kind())})

	s, err := m.openSession(ctx, logger, nk, userID)
	if err != nil {
		return "", err
	}
	if start, ok := action.(app.StartGame); ok {
		action = m.prepareStart(ctx, logger, nk, userID, start)
	}

	res, err := s.Dispatch(ctx, action)
	if err != nil {
		return "", runtime.NewError("Failed to save game", codeInternal)
	}
	if res.Rejected != nil {
		return respond(rpcResponse{State: res.State, Rejected: res.Rejected.Error()})
	}

	if start, ok := action.(app.StartGame); ok {
		source, err := m.cardSource(logger, nk, userID, start.SourceID)
		if err == nil {
			err = bot.DealInitialCards(ctx, s, source, start.SourceID)
		}
		if err != nil {
			// The game is started either way; dealing can be retried by the client.
			logger.Warn("Failed to deal initial cards: %v", err)
		}
		res.State = s.State()
	}
	return respond(rpcResponse{State: res.State, Events: res.Events})
}

// prepareStart fills in the configured default source and its display name.
func (m *Module) prepareStart(ctx context.Context, logger runtime.Logger, nk StorageEngine, userID string, start app.StartGame) app.StartGame {
	start.SourceID = m.game.SourceOr(start.SourceID)
	if start.SourceID == "" {
		start.SourceID = catalog.SourceAll
	}
	if start.SourceName != "" {
		return start
	}
	if name, err := m.catalog.SourceName(start.SourceID); err == nil {
		start.SourceName = name
		return start
	}
	if client, err := m.spotifyClient(logger, nk, userID); err == nil {
		if pl, err := client.Playlist(ctx, start.SourceID); err == nil {
			start.SourceName = pl.Name
		}
	}
	return start
}

// RpcNewGame discards the caller's game.
func (m *Module) RpcNewGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	logger = logger.WithField("user_id", userID)
	s, err := m.openSession(ctx, logger, nk, userID)
	if err != nil {
		return "", err
	}
	if err := s.NewGame(ctx); err != nil {
		logger.Error("Failed to clear game: %v", err)
		return "", runtime.NewError("Failed to clear game", codeInternal)
	}
	logger.Info("New game")
	return respond(rpcResponse{State: s.State()})
}

// RpcStandings returns the scoreboard as protojson.
func (m *Module) RpcStandings(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	s, err := m.openSession(ctx, logger.WithField("user_id", userID), nk, userID)
	if err != nil {
		return "", err
	}
	out, err := marshalStandings(s.State())
	if err != nil {
		logger.Error("RpcStandings [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return out, nil
}

// RpcDrawCard draws a card nobody holds and makes it the current card.
// Payload: (Optional) {"sourceId": "..."}; defaults to the game's source.
func (m *Module) RpcDrawCard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	var req struct {
		SourceID string `json:"sourceId"`
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", codeInvalidArgument)
		}
	}
	logger = logger.WithField("user_id", userID)

	s, err := m.openSession(ctx, logger, nk, userID)
	if err != nil {
		return "", err
	}
	state := s.State()
	if state.Phase != domain.PhasePreTurn {
		return "", runtime.NewError("Cannot draw a card now", codeFailedPrecondition)
	}

	sourceID := req.SourceID
	if sourceID == "" {
		sourceID = state.Settings.SourceID
	}
	sourceID = m.game.SourceOr(sourceID)
	source, err := m.cardSource(logger, nk, userID, sourceID)
	if err != nil {
		return "", rpcSourceError(err)
	}
	cards, err := source.RandomCards(ctx, sourceID, drawBatch)
	if err != nil {
		logger.Warn("Failed to draw from %s: %v", sourceID, err)
		return "", rpcSourceError(err)
	}
	card, ok := unusedCard(state, cards)
	if !ok {
		return "", runtime.NewError("No unused cards left", codeFailedPrecondition)
	}

	res, err := s.Dispatch(ctx, app.SetCurrentCard{Card: card})
	if err != nil {
		return "", runtime.NewError("Failed to save game", codeInternal)
	}
	if res.Rejected != nil {
		return respond(rpcResponse{State: res.State, Rejected: res.Rejected.Error()})
	}
	return respond(rpcResponse{State: res.State, Events: res.Events})
}

func unusedCard(state *domain.GameState, cards []domain.Card) (domain.Card, bool) {
	for _, c := range cards {
		if !state.CardInPlay(c.ID) {
			return c, true
		}
	}
	return domain.Card{}, false
}

// cardSource serves catalog ids offline and anything else from Spotify.
func (m *Module) cardSource(logger runtime.Logger, nk StorageEngine, userID, sourceID string) (ports.CardSource, error) {
	if _, err := m.catalog.SourceName(sourceID); err == nil {
		return m.catalog, nil
	}
	return m.spotifyClient(logger, nk, userID)
}

func rpcSourceError(err error) error {
	switch {
	case errors.Is(err, spotify.ErrNotLoggedIn), errors.Is(err, spotify.ErrUnauthorized):
		return runtime.NewError("Spotify login required", codeUnauthenticated)
	case errors.Is(err, errSpotifyDisabled), errors.Is(err, catalog.ErrUnknownSource), errors.Is(err, spotify.ErrEmptyPlaylist):
		return runtime.NewError("Unknown card source", codeNotFound)
	default:
		return runtime.NewError("Card source unavailable", codeUnavailable)
	}
}
