package main

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "tabito/internal/adapters/http_server"
	"tabito/internal/adapters/observability"
	"tabito/internal/adapters/osm"
	"tabito/internal/adapters/places"
	redisad "tabito/internal/adapters/redis"
	"tabito/internal/app"
	"tabito/internal/domain"
	"tabito/internal/shared"
	mysqlrepo "tabito/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	providers := map[domain.Source]domain.SearchProvider{
		domain.SourcePlaces: places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS),
		domain.SourceOSM:    osm.New(cfg.OverpassURL, cfg.NominatimURL, osm.WithCache(cache)),
	}
	imports := app.NewImportService(providers, store, cache, 5*time.Minute)
	q := app.NewQueryService(store, cache, cfg.CacheTTL)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Imports: imports, Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
