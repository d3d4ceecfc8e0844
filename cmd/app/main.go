package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wichananm65/gift-concierge/internal/config"
	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/logger"
	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/recommendation"
	"github.com/wichananm65/gift-concierge/internal/server"
	"github.com/wichananm65/gift-concierge/internal/storage"
	"github.com/wichananm65/gift-concierge/internal/transport"
	"github.com/wichananm65/gift-concierge/internal/visitor"
	"github.com/wichananm65/gift-concierge/internal/wishlist"
)

const (
	visitorIdle  = 2 * time.Hour
	sweepEvery   = 10 * time.Minute
	shutdownWait = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db := mustOpenStorage(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}

	gw := transport.NewGateway(cfg.Upstream.BaseURL, time.Duration(cfg.Upstream.TimeoutSec)*time.Second, log)
	policies := fallback.NewResolver(nil, log)
	catalog := gift.NewCatalog(nil)

	visitors := visitor.NewRegistry(visitor.Deps{
		Gateway:       gw,
		Policies:      policies,
		Store:         store,
		Catalog:       catalog,
		DB:            db,
		LocalDialogue: cfg.Dialogue.Local,
		ThinkDelay:    time.Duration(cfg.Dialogue.ThinkDelayMs) * time.Millisecond,
		Log:           log,
	})
	go sweep(ctx, visitors, log)

	app := server.New(server.Deps{
		Config:          cfg,
		Log:             log,
		Visitors:        visitors,
		Gifts:           gift.NewService(gw, policies, catalog),
		Recommendations: recommendation.NewService(gw, policies, catalog),
		Drafts:          quiz.NewDrafts(store),
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("shutdown", "error", err.Error())
		}
	}()

	log.Info("starting server",
		"addr", cfg.Server.Addr,
		"upstream", cfg.Upstream.BaseURL,
		"storage", cfg.Storage.Driver,
		"local_dialogue", cfg.Dialogue.Local)
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

// mustOpenStorage returns the key-value store for the configured driver. The postgres
// driver also returns its pool so guest wishlists can use native arrays.
func mustOpenStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, *sql.DB) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "file":
		s, err := storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			panic(err)
		}
		return s, nil
	case "postgres":
		db := mustOpenDB(cfg.Storage.DatabaseURL)
		s := storage.NewPostgresStore(db)
		if err := s.Migrate(ctx); err != nil {
			panic(err)
		}
		if err := wishlist.MigratePostgres(ctx, db); err != nil {
			panic(err)
		}
		log.Info("postgres storage ready")
		return s, db
	default:
		panic(fmt.Sprintf("unknown storage driver %q", cfg.Storage.Driver))
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func sweep(ctx context.Context, visitors *visitor.Registry, log *slog.Logger) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := visitors.Sweep(visitorIdle); n > 0 {
				log.Debug("visitors swept", "dropped", n, "active", visitors.Len())
			}
		}
	}
}
