package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mauzec/task-manager/internal/api"
	"github.com/mauzec/task-manager/internal/config"
	"github.com/mauzec/task-manager/internal/service"
	"github.com/mauzec/task-manager/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	configAppName = "app"
	configExt     = "env"
	configDir     = "config"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout carries command output.
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := readConfig()
	if err != nil || cfg == nil {
		_, _ = fmt.Fprintf(os.Stderr, "cant read config, check %s/%s.%s: %v\n", configDir, configAppName, configExt, err)
		return exitUsage
	}

	zapLogger, err := newLogger(cfg.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "cant init logger: %v\n", err)
		return exitFailed
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	logger := zapLogger.Named("tasks")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	c, err := newAppComponent(ctx, cfg, logger)
	if err != nil {
		logger.Error("cant create app component", zap.Error(err), zap.String("storage_mode", cfg.StorageMode))
		return exitFailed
	}
	defer c.closeSlot(logger)

	cli := &app{
		client: c.client,
		store:  c.store,
		out:    os.Stdout,
		errOut: os.Stderr,
		loc:    time.Local,
	}
	return cli.run(ctx, os.Args[1:])
}

type appComponent struct {
	slot   storage.Slot
	store  *service.TaskStore
	client *api.Client
}

func newAppComponent(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*appComponent, error) {
	slot, err := setupSlot(cfg)
	if err != nil {
		return nil, err
	}
	idGen, err := setupIDGen(cfg)
	if err != nil {
		_ = slot.Close()
		return nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.OpenTimeout)
	defer cancel()
	store, err := service.NewTaskStore(openCtx, slot, idGen, time.Now, logger.Named("store"))
	if err != nil {
		_ = slot.Close()
		return nil, err
	}

	client, err := api.NewClient(api.ClientOptions{
		Store:  store,
		Delay:  cfg.APIDelay,
		Logger: logger.Named("api"),
	})
	if err != nil {
		_ = slot.Close()
		return nil, err
	}
	return &appComponent{slot: slot, store: store, client: client}, nil
}

func (c *appComponent) closeSlot(logger *zap.Logger) {
	if c.slot == nil {
		return
	}
	if err := c.slot.Close(); err != nil {
		logger.Error("cant close slot", zap.Error(err))
	}
	c.slot = nil
}

func readConfig() (*config.AppConfig, error) {
	return config.LoadAppConfig(configAppName, configExt, configDir)
}

func setupSlot(cfg *config.AppConfig) (storage.Slot, error) {
	if cfg.StorageMode != config.StorageMemory && cfg.StorageMode != config.StorageRedis {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	switch cfg.StorageMode {
	case config.StorageMemory:
		return storage.NewMemorySlot(), nil
	case config.StorageFile:
		return storage.NewFileSlot(filepath.Join(cfg.DataDir, cfg.SlotKey+".json"))
	case config.StorageBolt:
		return storage.NewBoltSlot(filepath.Join(cfg.DataDir, "tasks.db"), cfg.SlotKey, cfg.OpenTimeout)
	case config.StorageSQLite:
		return storage.NewSQLiteSlot(filepath.Join(cfg.DataDir, "tasks.sqlite"), cfg.SlotKey)
	case config.StorageRedis:
		return storage.NewRedisSlot(cfg.RedisURL, cfg.SlotKey, cfg.OpenTimeout)
	default:
		return nil, errors.New("unknown storage mode")
	}
}

func setupIDGen(cfg *config.AppConfig) (service.IDGenerator, error) {
	switch cfg.IDScheme {
	case config.IDSchemeUUID:
		return service.NewRandomIDGenerator(cfg.IDPrefix), nil
	case config.IDSchemeTime:
		return service.NewTimeIDGenerator(cfg.IDPrefix, time.Now), nil
	default:
		return nil, errors.New("unknown id scheme")
	}
}
