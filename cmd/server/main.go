package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/rotation-advisor-service/internal/augment"
	"github.com/maxviazov/rotation-advisor-service/internal/cache"
	"github.com/maxviazov/rotation-advisor-service/internal/config"
	"github.com/maxviazov/rotation-advisor-service/internal/gameclock"
	"github.com/maxviazov/rotation-advisor-service/internal/handler"
	"github.com/maxviazov/rotation-advisor-service/internal/logger"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
	"github.com/maxviazov/rotation-advisor-service/internal/repository/memory"
	"github.com/maxviazov/rotation-advisor-service/internal/repository/postgres"
	"github.com/maxviazov/rotation-advisor-service/internal/rotation"
	"github.com/maxviazov/rotation-advisor-service/internal/service"
)

// storage is whichever backend the config selected.
type storage struct {
	games   repository.GameRepository
	history repository.HistoryRepository
	tx      repository.TxManager
	pinger  repository.Pinger
	close   func()
}

func main() {
	configPath := os.Getenv("APP_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("storage initialization failed")
	}
	defer store.close()

	latest, cachePinger, closeCache := openCache(cfg, appLogger)
	defer closeCache()

	thresholds, err := cfg.Rotation.Thresholds()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid rotation settings")
	}
	engine, err := rotation.NewEngine(thresholds, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("rotation engine initialization failed")
	}
	clock, err := gameclock.New(thresholds.QuarterDuration)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("game clock initialization failed")
	}

	augCfg := cfg.Augment.Client()
	var enhancer augment.Enhancer
	if augCfg.Enabled() {
		enhancer = augment.NewClient(augCfg, appLogger)
		appLogger.Info().Str("model", augCfg.Model).Msg("reasoning enhancement enabled")
	}
	coordinator := augment.NewCoordinator(enhancer, latest, augCfg.Timeout, appLogger)

	locks := service.NewGameLocks()
	gameSvc := service.NewGameService(store.games, store.history, store.tx, locks, clock, coordinator, appLogger)
	rotationSvc := service.NewRotationService(store.games, store.history, store.tx, locks,
		engine, coordinator, latest, cfg.Rotation.HistoryCap, appLogger)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger(appLogger))
	handler.Register(router, handler.AllOf(store.pinger, cachePinger), gameSvc, rotationSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info().Int("port", cfg.App.Port).Str("storage", cfg.Storage.Driver).Msg("service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}
	coordinator.Wait()
	appLogger.Info().Msg("service stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (storage, error) {
	if cfg.Storage.Driver != "postgres" {
		st := memory.New(cfg.Rotation.HistoryCap)
		return storage{games: st.Games(), history: st.History(), tx: st.TxManager(), pinger: st, close: func() {}}, nil
	}

	db, err := repository.New(ctx, cfg, logger)
	if err != nil {
		return storage{}, err
	}
	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, db.Pool(), *logger); err != nil {
			db.Close()
			return storage{}, err
		}
	}
	pool := db.Pool()
	return storage{
		games:   postgres.NewGameRepository(pool),
		history: postgres.NewHistoryRepository(pool),
		tx:      postgres.NewTxManager(pool),
		pinger:  postgres.NewPinger(pool),
		close:   db.Close,
	}, nil
}

// openCache returns the redis cache when an address is configured, else an in-process one.
func openCache(cfg *config.Config, logger zerolog.Logger) (cache.AnalysisCache, handler.Pinger, func()) {
	ttl := cfg.Redis.TTLDuration()
	if cfg.Redis.Addr == "" {
		return cache.NewMemory(ttl), nil, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("analysis cache on redis")
	return cache.NewRedis(rdb, ttl), cache.Pinger{Client: rdb}, func() {
		if err := rdb.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing redis client")
		}
	}
}
