package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	MetricsAddr     string
	MySQLDSN        string // empty disables report persistence
	MigrationsDir   string // applied at startup when set
	RedisAddr       string // empty disables caching
	RedisDB         int
	RedisPass       string
	HFBaseURL       string
	HFModel         string
	HFToken         string
	HFRPS           int
	Workers         int
	ClassifyTimeout time.Duration
	RequestTimeout  time.Duration
	MaxUploadBytes  int64
	CacheTTL        time.Duration
	PredictionTTL   time.Duration
}

// LoadDotEnv reads .env files when present; real environment variables win.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		MySQLDSN:        env("MYSQL_DSN", ""),
		MigrationsDir:   env("MIGRATIONS_DIR", ""),
		RedisAddr:       env("REDIS_ADDR", ""),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		HFBaseURL:       env("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFModel:         env("HF_MODEL", "distilbert-base-uncased-finetuned-sst-2-english"),
		HFToken:         env("HF_TOKEN", ""),
		HFRPS:           atoi("HF_RPS", 10),
		Workers:         atoi("CLASSIFY_WORKERS", 8),
		ClassifyTimeout: time.Duration(atoi("CLASSIFY_TIMEOUT_MS", 10000)) * time.Millisecond,
		RequestTimeout:  time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 300)) * time.Second,
		MaxUploadBytes:  int64(atoi("MAX_UPLOAD_MB", 32)) << 20,
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		PredictionTTL:   time.Duration(atoi("PREDICTION_TTL_SECONDS", 86400)) * time.Second,
	}
	if c.HFToken == "" {
		log.Warn().Msg("HF_TOKEN is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
