// Package main is the entry point for the CardClash terminal client.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/cardgen"
	"github.com/samdwyer/cardclash/internal/config"
	"github.com/samdwyer/cardclash/internal/game"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/logging"
	"github.com/samdwyer/cardclash/internal/store"
	"github.com/samdwyer/cardclash/internal/telemetry"
	"github.com/samdwyer/cardclash/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $CARDCLASH_CONFIG or ./cardclash.yaml)")
	seed := flag.Int64("seed", 0, "random seed; 0 uses the config or the clock")
	flag.Parse()

	// .env makes HONEYCOMB_CARDCLASH_API_KEY available for local development.
	if err := config.LoadEnv(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	// The screen owns stdout, so logs go to a file or nowhere.
	logger := zap.NewNop()
	if cfg.Log.File != "" {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development, cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to set up logging: %v", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("telemetry setup failed, running without observability", zap.Error(err))
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown", zap.Error(err))
			}
		}()
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("game error", zap.Error(err))
		log.Fatalf("Game error: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	tables, err := gamedata.LoadTables()
	if err != nil {
		return err
	}
	repo, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	rng := rand.New(rand.NewSource(cfg.Seed))
	gen := cardgen.New(tables, rand.New(rand.NewSource(rng.Int63())))
	player := store.NewPlayer(repo, cfg.Player.ID, gen, rand.New(rand.NewSource(rng.Int63())),
		store.WithStarterCards(cfg.Player.StarterCards),
		store.WithPlayerLogger(logger.Named("store")),
	)

	screen, err := ui.NewScreen()
	if err != nil {
		return err
	}
	g := game.New(game.Config{Seed: rng.Int63(), Battle: cfg.Battle}, screen, player, gen, tables.Creatures,
		game.WithLogger(logger),
	)
	logger.Info("client started", zap.Int64("seed", cfg.Seed), zap.String("player", cfg.Player.ID))
	return g.Run(ctx)
}
