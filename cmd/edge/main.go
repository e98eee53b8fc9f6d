package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodswipe/foodswipe-edge/internal/adapters/httpapi"
	memsessionstore "github.com/foodswipe/foodswipe-edge/internal/adapters/memory/sessionstore"
	postgres "github.com/foodswipe/foodswipe-edge/internal/adapters/postgres"
	pgsessionstore "github.com/foodswipe/foodswipe-edge/internal/adapters/postgres/sessionstore"
	redissessionstore "github.com/foodswipe/foodswipe-edge/internal/adapters/redis/sessionstore"
	"github.com/foodswipe/foodswipe-edge/internal/adapters/remoteapi"
	"github.com/foodswipe/foodswipe-edge/internal/app/account"
	"github.com/foodswipe/foodswipe-edge/internal/app/discovery"
	"github.com/foodswipe/foodswipe-edge/internal/app/photos"
	platformclock "github.com/foodswipe/foodswipe-edge/internal/platform/clock"
	"github.com/foodswipe/foodswipe-edge/internal/platform/config"
	"github.com/foodswipe/foodswipe-edge/internal/platform/logging"
	sessionstoreport "github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

func main() {
	cfg, err := config.LoadEdgeConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	var (
		store   sessionstoreport.Store
		cleanup func()
	)
	switch cfg.SessionBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		pgStore := pgsessionstore.NewStore(pool)
		go sweepExpiredSessions(ctx, pgStore, logger)
		store = pgStore
	case "redis":
		client, err := redissessionstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid redis config: %v", err)
		}
		cleanup = func() { _ = client.Close() }
		store = redissessionstore.NewStore(client, redissessionstore.Options{IdleTTL: cfg.SessionTTL})
	default:
		store = memsessionstore.NewStore()
	}
	if cleanup != nil {
		defer cleanup()
	}

	remote, err := remoteapi.New(cfg.APIBaseURL, remoteapi.Options{
		Timeout:       cfg.APITimeout,
		PhotoMaxBytes: cfg.PhotoMaxBytes,
		Credentials:   account.NewCredentials(store),
		PhotoHosts:    cfg.PhotoHosts,
	})
	if err != nil {
		log.Fatalf("invalid api config: %v", err)
	}

	loader := photos.NewLoader(remote, clk, logger)
	accounts := account.NewService(remote.Auth(), store, clk, cfg.SessionTTL)
	disc := discovery.NewService(remote.Places(), remote.Restaurants(), remote.Favorites())

	api := httpapi.NewServer(loader, accounts, disc, clk)
	api.Cookies = httpapi.CookieConfig{Secure: cfg.CookieSecure}
	api.DefaultViewportWidth = cfg.DefaultViewportWidth

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(api, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("edge listening", "addr", srv.Addr, "api", cfg.APIBaseURL, "sessions", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// sweepExpiredSessions removes expired rows; redis expires keys on its own.
func sweepExpiredSessions(ctx context.Context, store *pgsessionstore.Store, logger *slog.Logger) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				logger.Error("session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
