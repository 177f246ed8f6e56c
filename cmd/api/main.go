package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hostaway_sync/internal/adapters/hostaway"
	server "hostaway_sync/internal/adapters/http_server"
	"hostaway_sync/internal/adapters/observability"
	redisad "hostaway_sync/internal/adapters/redis"
	"hostaway_sync/internal/app"
	"hostaway_sync/internal/shared"
	mysqlrepo "hostaway_sync/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		// reads fall through to MySQL on cache errors
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
	}

	client, err := hostaway.New(cfg.APIBase, cfg.RPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
	}

	// deps
	repo := mysqlrepo.New(db)
	creds := cfg.Credentials()
	h := &server.Handlers{
		Q:          app.NewQueryService(repo, cache, cfg.CacheTTL),
		Sync:       app.NewSyncService(client, repo, cache, creds, cfg.Workers),
		Prices:     app.NewPriceService(client, creds),
		Booking:    app.NewBookingService(client, creds),
		MapsKey:    cfg.MapsKey,
		AdminToken: cfg.AdminToken,
	}
	if cfg.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN is empty; /v1/admin is unauthenticated")
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
