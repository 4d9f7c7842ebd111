package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tasty-canteen/api"
	"tasty-canteen/bot"
	"tasty-canteen/config"
	"tasty-canteen/db"
	"tasty-canteen/seed"
	"tasty-canteen/services"
)

const usage = "usage: tasty-canteen [serve|migrate|seed]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "serve":
		err = serve(ctx, cfg, log)
	case "migrate":
		err = migrate(ctx, cfg, log)
	case "seed":
		err = seedMenu(ctx, cfg, log)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func migrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return applyMigrations(ctx, pool, log)
}

func seedMenu(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Store.Driver == config.StoreDriverMemory {
		return errors.New("seed: the memory driver is seeded on every start")
	}
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return loadSeed(ctx, db.NewPostgresStore(pool), log)
}

func loadSeed(ctx context.Context, store db.RecordStore, log *zap.Logger) error {
	n, err := seed.Run(ctx, services.NewCatalog(store, log))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info("menu seeded", zap.Int("items", n))
	return nil
}

// openStore builds the configured record store. The returned pool is nil for
// the memory driver.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (db.RecordStore, *pgxpool.Pool, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		store, err := db.NewMemoryStore()
		if err != nil {
			return nil, nil, err
		}
		log.Warn("using in-memory store; data is lost on exit")
		return store, nil, loadSeed(ctx, store, log)
	}

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.AutoMigrate {
		if err := applyMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	store := db.NewPostgresStore(pool)
	if cfg.Store.AutoSeed {
		if err := loadSeed(ctx, store, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return store, pool, nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.HTTP.Addr == "" && cfg.Telegram.Token == "" {
		return errors.New("nothing to serve: set HTTP_ADDR or TOKEN")
	}
	store, pool, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	shop := services.NewStorefront(store, services.Options{
		Name:        cfg.Shop.Name,
		Currency:    cfg.Shop.Currency,
		TaxRate:     cfg.Shop.TaxRate,
		OrdersLimit: cfg.Shop.OrdersLimit,
		SessionTTL:  cfg.Shop.SessionTTL,
	}, log)

	g, ctx := errgroup.WithContext(ctx)
	if ttl := shop.Sessions.TTL(); ttl > 0 {
		g.Go(func() error {
			shop.Sessions.RunSweeper(ctx, min(ttl, time.Minute), func(n int) {
				log.Debug("idle sessions dropped", zap.Int("sessions", n))
			})
			return nil
		})
	}
	if cfg.HTTP.Addr != "" {
		if !cfg.Log.Development {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := api.NewServer(cfg.HTTP, shop, log)
		g.Go(func() error { return srv.Run(ctx) })
	}
	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, shop, log)
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		g.Go(func() error {
			b.Run(ctx)
			return nil
		})
	}
	log.Info("storefront started",
		zap.String("shop", cfg.Shop.Name),
		zap.String("store", cfg.Store.Driver),
		zap.String("http", cfg.HTTP.Addr),
		zap.Bool("telegram", cfg.Telegram.Token != ""))
	return g.Wait()
}
