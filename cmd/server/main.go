package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finedu/classroom/internal/assist"
	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/notify"
	"github.com/finedu/classroom/internal/platform/cache"
	"github.com/finedu/classroom/internal/platform/config"
	"github.com/finedu/classroom/internal/platform/database"
	"github.com/finedu/classroom/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	seed := loadSeed(cfg)
	seed.CurrentUserID = cfg.Session.UserID

	repo, events, cleanup, err := buildStore(ctx, cfg, seed)
	if err != nil {
		slog.Error("failed to initialize store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	gateway, closeCache := buildGateway(ctx, cfg)
	defer closeCache()

	hub := notify.NewHub()
	srv := newServer(repo, gateway, events, hub)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      newMux(srv),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", httpSrv.Addr,
			"store", cfg.Store.Backend,
			"assist", gateway.Available(),
		)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadSeed returns fixtures from the configured directory, falling back to
// the built-in demo dataset.
func loadSeed(cfg *config.Config) catalog.Seed {
	if cfg.Seed.Dir == "" {
		return catalog.DefaultSeed()
	}
	seed, err := catalog.LoadSeed(cfg.Seed.Dir)
	if err != nil {
		slog.Warn("failed to load seed fixtures, using built-in dataset", "dir", cfg.Seed.Dir, "error", err)
		return catalog.DefaultSeed()
	}
	return seed
}

// buildStore constructs the configured repository backend. The postgres
// backend ensures the schema and imports the seed on first run.
func buildStore(ctx context.Context, cfg *config.Config, seed catalog.Seed) (store.Store, store.EventLogger, func(), error) {
	if cfg.Store.Backend == config.StoreMemory {
		return store.NewMemoryStore(seed), store.NewMemoryEventLogger(), func() {}, nil
	}

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	pg, err := store.NewPostgresStore(db.Pool, seed.CurrentUserID)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ensuring schema: %w", err)
	}
	if err := pg.ImportSeed(ctx, seed); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("importing seed: %w", err)
	}

	return pg, store.NewPostgresEventLogger(db.Pool), db.Close, nil
}

// buildGateway wires the content-assist gateway. Without a provider key the
// gateway stays up and serves placeholder text; without a cache URL drafts
// are simply not cached.
func buildGateway(ctx context.Context, cfg *config.Config) (*assist.Gateway, func()) {
	router := assist.NewRouter()
	if cfg.AI.Gemini.APIKey != "" {
		router.Register("gemini", assist.NewGeminiProvider(cfg.AI.Gemini.APIKey))
	} else {
		slog.Warn("no content-assist provider configured, drafts will be placeholders")
	}

	closeCache := func() {}
	var draftCache *cache.Cache
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, drafts will not be cached", "error", err)
		} else {
			draftCache = c
			closeCache = func() {
				if err := c.Close(); err != nil {
					slog.Warn("failed to close cache", "error", err)
				}
			}
		}
	}

	return assist.NewGateway(router, draftCache), closeCache
}
