package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/catalog"
	"hitstory/internal/config"
)

// InitModule wires the game RPCs into the Nakama runtime. Settings come from
// the runtime env map using the same keys as the standalone binary.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	vars, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	var env config.Env
	if err := config.ParseEnvMap(&env, vars); err != nil {
		return err
	}

	if env.GameConfigPath != "" {
		if err := config.LoadGameConfig(env.GameConfigPath); err != nil {
			return err
		}
	}

	seed := env.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cat, err := catalog.New(rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if err := RegisterRPCs(initializer, NewModule(env, config.GetGameConfig(), cat)); err != nil {
		return err
	}
	if !env.SpotifyEnabled() {
		logger.Warn("Spotify credentials missing from env, only catalog sources are available.")
	}

	logger.Info("Hitstory Go module loaded.")
	return nil
}
