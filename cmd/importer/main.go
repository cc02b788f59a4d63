package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tabito/internal/adapters/observability"
	"tabito/internal/adapters/osm"
	"tabito/internal/adapters/places"
	redisad "tabito/internal/adapters/redis"
	"tabito/internal/app"
	"tabito/internal/domain"
	"tabito/internal/shared"
	mysqlrepo "tabito/internal/storage/mysql"
)

// seedBatch is one quick-import run. Batches are independent of each other;
// items within a batch stay strictly sequential.
type seedBatch struct {
	Query      string
	Category   domain.Category
	Prefecture string
	Source     domain.Source
}

var seedBatches = []seedBatch{
	{"hoteles", domain.CategoryHotel, "Tokio", domain.SourcePlaces},
	{"hoteles", domain.CategoryHotel, "Kyoto", domain.SourcePlaces},
	{"restaurantes", domain.CategoryRestaurant, "Tokio", domain.SourcePlaces},
	{"restaurantes", domain.CategoryRestaurant, "Osaka", domain.SourceOSM},
	{"templos", domain.CategoryAttraction, "Kyoto", domain.SourceOSM},
	{"museos", domain.CategoryAttraction, "Tokio", domain.SourcePlaces},
	{"castillos", domain.CategoryAttraction, "Osaka", domain.SourceOSM},
	{"parques", domain.CategoryAttraction, "Nara", domain.SourceOSM},
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("batches", len(seedBatches)).
		Int("limit", cfg.ImportLimit).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	providers := map[domain.Source]domain.SearchProvider{
		domain.SourcePlaces: places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS),
		domain.SourceOSM:    osm.New(cfg.OverpassURL, cfg.NominatimURL, osm.WithCache(cache)),
	}
	imports := app.NewImportService(providers, store, cache, 5*time.Minute)

	sem := semaphore.NewWeighted(int64(cfg.Batches))
	var wg sync.WaitGroup

	for _, b := range seedBatches {
		b := b

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(batch seedBatch) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := imports.QuickImport(ctx, batch.Query, batch.Category, batch.Prefecture, cfg.ImportLimit, batch.Source)
			if err != nil {
				log.Warn().Str("query", batch.Query).Str("prefecture", batch.Prefecture).Err(err).Msg("batch failed")
				return
			}
			log.Info().
				Str("query", batch.Query).
				Str("prefecture", batch.Prefecture).
				Str("source", string(batch.Source)).
				Int("imported", res.Imported).
				Int("duplicates", res.Duplicates).
				Int("errors", res.Errors).
				Msg("batch done")
		}(b)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}
