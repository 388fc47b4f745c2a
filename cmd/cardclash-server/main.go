// Package main serves the CardClash battle engine over HTTP and websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/api"
	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/cardgen"
	"github.com/samdwyer/cardclash/internal/config"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/logging"
	"github.com/samdwyer/cardclash/internal/schedule"
	"github.com/samdwyer/cardclash/internal/store"
	"github.com/samdwyer/cardclash/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $CARDCLASH_CONFIG or ./cardclash.yaml)")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
		logger.Fatal("server error", zap.Error(err))
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

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	gen := cardgen.New(tables, rand.New(rand.NewSource(rng.Int63())))
	player := store.NewPlayer(repo, cfg.Player.ID, gen, rand.New(rand.NewSource(rng.Int63())),
		store.WithStarterCards(cfg.Player.StarterCards),
		store.WithPlayerLogger(logger.Named("store")),
	)

	loop := schedule.NewLoop(256)
	hub := api.NewHub(logger.Named("ws"))
	engine := battle.New(gen, player, player, hub, hub, loop,
		battle.WithConfig(cfg.Battle),
		battle.WithLogger(logger.Named("battle")),
		battle.WithRand(rand.New(rand.NewSource(rng.Int63()))),
		battle.WithRecorder(player),
	)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(loop, engine, player, hub, logger.Named("http"))
	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Address), zap.String("player", cfg.Player.ID))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		loop.Stop()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	loop.Stop()
	<-loopDone
	return err
}
