// cmd/registry-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jivelink/internal/httpapi"
	"jivelink/internal/oauth"
	"jivelink/internal/registry"
	"jivelink/internal/signature"
	"jivelink/pkg/communities"
	"jivelink/pkg/config"
	"jivelink/pkg/db"
	"jivelink/pkg/logger"
	"jivelink/pkg/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx := context.Background()
	pool := db.MustConnect(ctx, cfg, log)
	rdb := db.MustRedis(ctx, cfg, log)

	var store communities.Store
	switch {
	case pool != nil:
		store = communities.NewPostgresStore(pool, log)
		if err := communities.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
	case rdb != nil:
		store = communities.NewRedisStore(rdb, log)
	default:
		store = communities.NewMemoryStore()
	}

	if seed, err := communities.LoadSeedDir(cfg.SeedDir); err != nil {
		log.Warnw("seed load", "dir", cfg.SeedDir, "err", err)
	} else if len(seed) > 0 {
		communities.Seed(ctx, store, seed, log)
		log.Infow("communities seeded", "count", len(seed))
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	validator := signature.NewValidator(cfg, httpClient, logger.Named(log, "signature"))
	tokens := oauth.NewClient(httpClient, logger.Named(log, "oauth"))
	refresher := oauth.NewRefreshHandler(tokens, store, cfg.DefaultClientID, cfg.DefaultClientSecret, logger.Named(log, "refresh"))

	svc := registry.New(cfg, store, validator, tokens, refresher, httpClient, logger.Named(log, "registry"))
	svc.Subscribe(httpapi.MetricsObserver())
	svc.Subscribe(func(event registry.Event, c communities.Community, err error) {
		if err != nil {
			log.Warnw("lifecycle", "event", event, "tenant", c.TenantID, "err", err)
		}
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("pong")) })
	httpapi.New(svc, logger.Named(log, "http")).Routes(r, cfg, store)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("registry-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	fmt.Println("registry-service stopped")
}
