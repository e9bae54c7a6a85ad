// Package hitstory parses the standalone command's configuration and runs a
// local game: bot autoplay or JSON-lines actions read from stdin.
package hitstory

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/app/session"
	"hitstory/internal/bot"
	"hitstory/internal/catalog"
	"hitstory/internal/config"
	"hitstory/internal/logging"
	"hitstory/internal/ports"
	"hitstory/internal/spotify"
	"hitstory/internal/storage/memory"
	"hitstory/internal/storage/sqlite"
)

const defaultSeats = 3

// Config holds the command configuration.
type Config struct {
	config.Env

	Autoplay int
	Players  []string
	Level    string
	SourceID string
	DeviceID string
	Fresh    bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg.Env); err != nil {
		return Config{}, err
	}
	var players string
	fs.IntVar(&cfg.Autoplay, "autoplay", 0, "let bots play up to N accepted actions (0 reads actions from stdin)")
	fs.StringVar(&players, "players", "", "comma-separated seat names (default: bot names)")
	fs.StringVar(&cfg.Level, "level", bot.BotLevelGood.String(), "bot level for named seats: random, good or god")
	fs.StringVar(&cfg.SourceID, "source", "", "catalog source (all, decade-1980, ...) or Spotify playlist id")
	fs.StringVar(&cfg.DeviceID, "device", "", "Spotify device that plays each drawn card")
	fs.BoolVar(&cfg.Fresh, "new", false, "discard the saved game")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite database (empty keeps the game in memory)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	for _, name := range strings.Split(players, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.Players = append(cfg.Players, name)
		}
	}
	if _, err := bot.ParseLevel(cfg.Level); err != nil {
		return Config{}, err
	}
	if cfg.Autoplay < 0 {
		return Config{}, fmt.Errorf("autoplay must not be negative")
	}
	return cfg, nil
}

// Run opens the saved game and plays it.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.GameConfigPath != "" {
		if err := config.LoadGameConfig(cfg.GameConfigPath); err != nil {
			return err
		}
	}
	if cfg.BotIdentitiesPath != "" {
		if err := bot.LoadIdentities(cfg.BotIdentitiesPath); err != nil {
			return err
		}
	}
	game := config.GetGameConfig()
	cfg.SourceID = game.SourceOr(cfg.SourceID)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	store, closeStore, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := app.NewService(rand.New(rand.NewSource(rng.Int63())), app.WithRules(game.Rules()))
	s := session.New(svc, store, logger, session.WithKey(cfg.SnapshotKey))
	if cfg.Fresh {
		if err := s.NewGame(ctx); err != nil {
			return err
		}
	} else if _, err := s.Restore(ctx); err != nil {
		return err
	}

	src, err := newSources(cfg, store, logger, rng)
	if err != nil {
		return err
	}

	if cfg.Autoplay > 0 {
		return autoplay(ctx, cfg, s, src, logger, rng, out)
	}
	return newConsole(s, src, cfg, logger).run(ctx, in, out)
}

// openStore opens the sqlite database at path. An empty path keeps the game in
// memory for the life of the process.
func openStore(ctx context.Context, path string) (ports.SnapshotPort, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return memory.New(), func() error { return nil }, nil
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// sources picks the card source for a game and, with Spotify, a player.
type sources struct {
	catalog *catalog.Catalog
	auth    *spotify.Auth
	tokens  *spotify.Tokens
	spotify *spotify.Client
	player  ports.PlaybackController
}

func newSources(cfg Config, store ports.SnapshotPort, logger runtime.Logger, rng *rand.Rand) (*sources, error) {
	cat, err := catalog.New(rand.New(rand.NewSource(rng.Int63())))
	if err != nil {
		return nil, err
	}
	src := &sources{catalog: cat}
	if !cfg.SpotifyEnabled() {
		return src, nil
	}
	auth, err := spotify.NewAuth(cfg.SpotifyClientID, cfg.SpotifyRedirectURI, []byte(cfg.StateSecret), store)
	if err != nil {
		return nil, err
	}
	src.auth = auth
	src.tokens = spotify.NewTokens(auth.Config(), store, spotify.DefaultTokenKey)
	src.spotify = spotify.NewClient(src.tokens, logger, rand.New(rand.NewSource(rng.Int63())))
	src.player = spotify.NewPlayer(src.spotify)
	return src, nil
}

// forID returns the source serving sourceID and its display name.
func (s *sources) forID(ctx context.Context, sourceID string) (ports.CardSource, string, error) {
	if sourceID == "" {
		sourceID = catalog.SourceAll
	}
	if name, err := s.catalog.SourceName(sourceID); err == nil {
		return s.catalog, name, nil
	}
	if s.spotify == nil {
		return nil, "", fmt.Errorf("%w: %q (set SPOTIFY_CLIENT_ID and HITSTORY_STATE_SECRET for playlists)", catalog.ErrUnknownSource, sourceID)
	}
	pl, err := s.spotify.Playlist(ctx, sourceID)
	if err != nil {
		return nil, "", err
	}
	return s.spotify, pl.Name, nil
}
