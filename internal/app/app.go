package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scanvault/internal/config"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/index"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
	"github.com/MrSnakeDoc/scanvault/internal/redis"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
	"github.com/MrSnakeDoc/scanvault/internal/scheduler"
	"github.com/MrSnakeDoc/scanvault/internal/store"
	redisstore "github.com/MrSnakeDoc/scanvault/internal/store/redis"
	"github.com/MrSnakeDoc/scanvault/internal/utils"
	"github.com/MrSnakeDoc/scanvault/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.TuningReloader
	sweeper     *scheduler.FolderSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	backend, redisClient, err := openStore(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open collection store: %v", err)
		os.Exit(1)
	}

	// Runtime token from the store wins over the configured one.
	tokens := recognition.RuntimeToken{Store: backend, Fallback: cfg.RecognitionToken}
	client, err := recognition.New(cfg.RecognitionURL, tokens,
		recognition.WithHTTPClient(&http.Client{Timeout: cfg.RecognitionTimeout}),
		recognition.WithLogger(loggerClient.Named("recognition")),
		recognition.WithLanguage(cfg.Lang),
	)
	if err != nil {
		loggerClient.Errorf("Failed to build recognition client: %v", err)
		os.Exit(1)
	}
	if cfg.RecognitionToken == "" {
		loggerClient.Warn("no recognition token configured, identification needs a runtime token")
	}

	res := resolver.New(client,
		resolver.WithLogger(loggerClient.Named("resolver")),
		resolver.WithMinImageLength(cfg.MinImageLength),
	)

	// Tuning reloader (only when a tuning file is configured)
	var reloader *scheduler.TuningReloader
	var reloadTrigger chan struct{}
	if cfg.TuningFile != "" {
		loggerClient.Info("tuning file configured, initializing tuning reloader",
			logger.String("file", cfg.TuningFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewTuningReloader(
			cfg.TuningFile,
			res,
			loggerClient.Named("tuning"),
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("tuning file not configured, using built-in tuning")
	}

	sweeper := scheduler.NewFolderSweeper(backend, loggerClient.Named("sweeper"), cfg.SweepInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		Resolver:       res,
		Store:          backend,
		StoreKind:      cfg.Store,
		TuningFile:     cfg.TuningFile,
		FallbackToken:  cfg.RecognitionToken != "",
		ReloadTrigger:  reloadTrigger,
		IdentifyBurst:  cfg.IdentifyBurst,
		IdentifyPerMin: cfg.IdentifyPerMin,
		MaxBodyBytes:   int64(cfg.MaxBodyMB) << 20,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		sweeper:     sweeper,
	}
}

// openStore returns the configured backend. The redis client is nil for the
// memory backend.
func openStore(cfg *config.Config, log logger.Logger) (store.Backend, *goredis.Client, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory collection store, cards are lost on restart")
		return index.NewMemoryIndex(), nil, nil
	}

	// Initialize Redis early - fail fast if unavailable
	log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Redis initialized successfully")
	return redisstore.NewStore(client), client, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting ScanVault v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("ScanVault %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start tuning reloader (if enabled)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start tuning reloader: %w", err)
		}
		a.logger.Info("tuning reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	// Start folder sweeper
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start folder sweeper: %w", err)
	}
	a.logger.Info("folder sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, a.logger, "redis")
		a.logger.Info("✅ Redis closed")
	}

	a.logger.Info("✅ ScanVault stopped cleanly")
	return nil
}
