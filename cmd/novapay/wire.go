package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/novapay"
	"github.com/aretw0/novapay/internal/config"
	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/pkg/adapters/file"
	"github.com/aretw0/novapay/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/novapay/pkg/adapters/redis"
	"github.com/aretw0/novapay/pkg/catalog"
	"github.com/aretw0/novapay/pkg/flows"
	"github.com/aretw0/novapay/pkg/persistence/middleware"
	"github.com/aretw0/novapay/pkg/ports"
	goredis "github.com/redis/go-redis/v9"
)

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// backend is the persistence selected by store.driver.
type backend struct {
	store  ports.StateStore
	locker ports.DistributedLocker
	close  func() error
}

func newBackend(cfg *config.Config, logger *slog.Logger) (*backend, error) {
	b := &backend{close: func() error { return nil }}

	switch cfg.Store.Driver {
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Store.Redis.Addr})
		b.store = redisAdapter.NewFromClient(client,
			redisAdapter.WithTTL(cfg.Store.Redis.TTL),
			redisAdapter.WithPrefix(cfg.Store.Redis.Prefix),
		)
		b.locker = redisAdapter.NewLocker(client, cfg.Store.Redis.Prefix)
		b.close = client.Close
		logger.Info("using redis store", "addr", cfg.Store.Redis.Addr)
	case "file":
		b.store = file.New(cfg.Store.File.Dir)
		logger.Info("using file store", "dir", cfg.Store.File.Dir)
	default:
		b.store = memory.NewStore()
	}

	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			_ = b.close()
			return nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = b.close()
			return nil, err
		}
		b.store = middleware.Chain(b.store, mw)
	}
	return b, nil
}

// newApp builds the application from cfg. The returned func releases
// the store connection.
func newApp(cfg *config.Config, logger *slog.Logger, opts ...novapay.Option) (*novapay.App, func() error, error) {
	b, err := newBackend(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	appOpts := []novapay.Option{
		novapay.WithLogger(logger),
		novapay.WithStore(b.store),
		novapay.WithActionTimeout(cfg.Session.ActionTimeout),
		novapay.WithFlowOptions(
			flows.WithMockMPIN(cfg.Mock.MPIN),
			flows.WithMockOTP(cfg.Mock.OTP),
			flows.WithLatency(cfg.Simulate.Latency),
		),
	}
	if b.locker != nil {
		appOpts = append(appOpts, novapay.WithLocker(b.locker, cfg.Session.LockTTL))
	}
	if cfg.Catalog != "" {
		cat, err := catalog.Load(cfg.Catalog)
		if err != nil {
			_ = b.close()
			return nil, nil, err
		}
		appOpts = append(appOpts, novapay.WithCatalog(cat))
	}

	app, err := novapay.New(append(appOpts, opts...)...)
	if err != nil {
		_ = b.close()
		return nil, nil, err
	}
	return app, b.close, nil
}
