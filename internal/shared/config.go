package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	PlacesBase string
	PlacesKey  string
	PlacesRPS  int

	OverpassURL  string
	NominatimURL string

	ImportLimit int
	Batches     int
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tabito?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		PlacesBase:   env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:    env("PLACES_API_KEY", ""),
		PlacesRPS:    atoi("PLACES_RPS", 5),
		OverpassURL:  env("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		NominatimURL: env("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		ImportLimit:  atoi("IMPORT_LIMIT", 5),
		Batches:      atoi("IMPORT_BATCHES", 4),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("PLACES_API_KEY is empty; places searches will use mock data")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
