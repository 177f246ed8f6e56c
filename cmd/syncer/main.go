package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hostaway_sync/internal/adapters/hostaway"
	"hostaway_sync/internal/adapters/observability"
	redisad "hostaway_sync/internal/adapters/redis"
	"hostaway_sync/internal/app"
	"hostaway_sync/internal/shared"
	mysqlrepo "hostaway_sync/internal/storage/mysql"
)

// syncer runs one full sync and exits; scheduling belongs to cron or a CronJob.
func main() {
	os.Exit(run())
}

func run() int {
	// no signal handling: SIGTERM ends the process, a started run is never drained
	ctx := context.Background()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "syncer")
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	log.Info().
		Str("base", cfg.APIBase).
		Int("workers", cfg.Workers).
		Int("rps", cfg.RPS).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Error().Err(err).Msg("sql.Open failed")
		return 1
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("db.Ping failed")
		return 1
	}
	log.Info().Msg("db ping ok")

	client, err := hostaway.New(cfg.APIBase, cfg.RPS)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize Hostaway client")
		return 1
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewSyncService(client, mysqlrepo.New(db), cache, cfg.Credentials(), cfg.Workers)

	sum, err := svc.RunSync(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sync failed")
		return 1
	}
	for _, e := range sum.Errors {
		log.Warn().Str("run_id", sum.RunID).Msg(e)
	}
	for _, c := range sum.Conflicts {
		log.Error().Str("run_id", sum.RunID).Msg(c)
	}
	log.Info().Str("run_id", sum.RunID).Str("status", sum.Status()).Int("synced", sum.Synced).Msg("syncer finished")
	return 0
}
