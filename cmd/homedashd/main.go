package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"homedash/config"
	"homedash/internal/api"
	"homedash/internal/db"
	"homedash/internal/diagnostics"
	"homedash/internal/logger"
	"homedash/internal/metrics"
	"homedash/internal/notification"
	"homedash/internal/store"
)

const defaultConfigPath = "./config/config.yaml"

func main() {
	configFlag := pflag.StringP("config", "c", "", "path to the YAML configuration file")
	pflag.Parse()

	// --config wins over CONFIG_PATH; the default path may be absent.
	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	allowMissing := configPath == ""
	if allowMissing {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "homedash")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("configuration loaded", zap.String("path", configPath))

	if err := run(cfg, log); err != nil {
		exitWithError(log, "homedash stopped", err)
	}
}

var exit = os.Exit

// exitWithError logs err, flushes the logger and exits with status 1.
func exitWithError(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	_ = log.Sync()
	exit(1)
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := db.Init(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	appStore := store.NewGormStore(gormDB)

	var (
		notifier       notification.Dispatcher = notification.Noop{}
		webpushOptions *webpush.Options
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, log)
		pool.Start(ctx)
		notifier = pool
		log.Info("alert push enabled", zap.Int("workers", cfg.WorkerPool.Size))
	} else {
		log.Info("VAPID keys not configured, alert push disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(api.Deps{
		Store:    appStore,
		Prober:   diagnostics.RandomProber{},
		Notifier: notifier,
		WebPush:  webpushOptions,
		Metrics:  metrics.New(appStore, log),
		Log:      log,
	})
	router, err := api.NewRouter(handler, api.RouterConfig{
		StaticDir:       cfg.Server.StaticDir,
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        cfg.Server.CacheTTL,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-stop:
	}
	log.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	log.Info("server gracefully stopped")
	return nil
}
