package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/use-agent/velocity/agent"
	"github.com/use-agent/velocity/api"
	"github.com/use-agent/velocity/backend"
	"github.com/use-agent/velocity/cache"
	"github.com/use-agent/velocity/catalog"
	"github.com/use-agent/velocity/config"
	"github.com/use-agent/velocity/engine"
	"github.com/use-agent/velocity/scraper"
	"github.com/use-agent/velocity/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("velocity starting",
		"addr", cfg.Server.Addr(),
		"mode", cfg.Server.Mode,
		"backend", cfg.Backend.URL,
		"maxPages", cfg.Browser.MaxPages,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 3. Page loading: browser with engine ladder, or HTTP only ───
	var deps api.Deps
	var visitor agent.Visitor

	var sc *scraper.Scraper
	if cfg.Browser.Enabled {
		var err error
		sc, err = scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			slog.Warn("browser unavailable, live targets use the HTTP engine only", "error", err)
		}
	}

	if sc != nil {
		defer sc.Close()
		deps.Pool = sc
		visitor = sc

		if cfg.Engine.EnableMultiEngine {
			engines := []engine.Engine{
				engine.NewHTTPEngine(cfg.Engine.HTTPTimeout),
				engine.NewRodEngine(sc.FetchHTML, false),
				engine.NewRodEngine(sc.FetchHTML, true),
			}
			memory := engine.NewDomainMemory(cfg.Engine.DomainMemoryTTL, 10*time.Minute)
			defer memory.Stop()

			dispatcher := engine.NewDispatcher(engines, cfg.Engine.EscalationDelays, memory)
			sc.SetDispatcher(dispatcher)
			slog.Info("multi-engine dispatcher enabled",
				"engines", dispatcher.Engines(),
				"delays", cfg.Engine.EscalationDelays,
			)
		}
	} else {
		visitor = scraper.NewFetcher(engine.NewHTTPEngine(0), cfg.Browser.UserAgents, cfg.Scraper.NavigationTimeout)
	}

	// ── 4. Extraction cache ─────────────────────────────────────────
	asmOpts := []agent.AssemblerOption{agent.WithVisitor(visitor)}
	if store := newCache(ctx, cfg.Cache); store != nil {
		defer store.Close()
		asmOpts = append(asmOpts, agent.WithCache(store))
	}

	// ── 5. Agent ────────────────────────────────────────────────────
	gen := catalog.NewGenerator(catalog.Options{
		Seed:    cfg.Demo.Seed,
		Min:     cfg.Demo.MinItems,
		Max:     cfg.Demo.MaxItems,
		BaseURL: cfg.Demo.BaseURL,
	})
	client := backend.NewClient(cfg.Backend.URL,
		backend.WithTimeouts(cfg.Backend.WriteTimeout, cfg.Backend.LogTimeout),
	)
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := client.Ping(pingCtx); err != nil {
		slog.Warn("backend not reachable yet, writes will be recorded as errors", "url", cfg.Backend.URL, "error", err)
	}
	pingCancel()

	notifier := webhook.NewNotifier(cfg.Webhook.Secret, cfg.Webhook.Timeout)
	deps.Runner = agent.NewRunner(agent.NewAssembler(gen, asmOpts...), client, notifier, agent.RunnerConfig{
		Concurrency:  max(cfg.Browser.MaxPages, 1),
		FlushTimeout: cfg.Backend.FlushTimeout,
		WebhookURL:   cfg.Webhook.URL,
	})
	deps.StartTime = time.Now()

	// ── 6. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(ctx, cfg, deps)
	handler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})(router)

	// ── 7. Start HTTP server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Runs can take a while: give in-flight requests 30 seconds.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		slog.Warn("pending webhook deliveries abandoned", "error", err)
	}

	slog.Info("velocity stopped")
}

// newCache returns the configured extraction cache, or nil when disabled.
// An unreachable Redis falls back to the in-memory cache.
func newCache(ctx context.Context, cfg config.CacheConfig) cache.Store {
	if !cfg.Enabled {
		return nil
	}
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		r, err := cache.NewRedis(connectCtx, cfg.RedisURL, cfg.TTL)
		if err == nil {
			slog.Info("extraction cache: redis", "ttl", cfg.TTL)
			return r
		}
		slog.Warn("redis cache unavailable, using in-memory cache", "error", err)
	}
	slog.Info("extraction cache: memory", "ttl", cfg.TTL, "maxEntries", cfg.MaxEntries)
	return cache.NewMemory(cfg.TTL, cfg.MaxEntries)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
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
