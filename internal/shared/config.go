package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"hostaway_sync/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	APIBase     string
	AccountID   string
	APISecret   string
	MapsKey     string
	AdminToken  string
	RPS         int
	Workers     int
	CacheTTL    time.Duration
}

// Credentials returns the upstream account settings handed to the auth resolver.
func (c Config) Credentials() domain.APICredentials {
	return domain.APICredentials{AccountID: c.AccountID, Secret: c.APISecret}
}

// fileConfig mirrors the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	AppEnv   string `yaml:"app_env"`
	HTTPAddr string `yaml:"http_addr"`
	MySQLDSN string `yaml:"mysql_dsn"`
	Redis    struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Hostaway struct {
		BaseURL   string `yaml:"base_url"`
		AccountID string `yaml:"account_id"`
		APISecret string `yaml:"api_secret"`
		RPS       int    `yaml:"rps"`
	} `yaml:"hostaway"`
	MapsKey         string `yaml:"maps_api_key"`
	SyncWorkers     int    `yaml:"sync_workers"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

func Load() Config {
	// .env is a local-development convenience; absence is normal.
	_ = godotenv.Load()

	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file unreadable, using environment only")
		} else if err := yaml.Unmarshal(b, &fc); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file invalid, using environment only")
		}
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", or(fc.AppEnv, "prod")),
		HTTPAddr:    env("HTTP_ADDR", or(fc.HTTPAddr, ":8080")),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", or(fc.MySQLDSN, "root:root@tcp(localhost:3306)/rentals?parseTime=true&charset=utf8mb4,utf8&loc=UTC")),
		RedisAddr:   env("REDIS_ADDR", or(fc.Redis.Addr, "localhost:6379")),
		RedisPass:   env("REDIS_PASSWORD", fc.Redis.Password),
		RedisDB:     atoi("REDIS_DB", fc.Redis.DB),
		APIBase:     env("HOSTAWAY_BASE_URL", or(fc.Hostaway.BaseURL, "https://api.hostaway.com/v1")),
		AccountID:   env("HOSTAWAY_ACCOUNT_ID", fc.Hostaway.AccountID),
		APISecret:   env("HOSTAWAY_API_SECRET", fc.Hostaway.APISecret),
		MapsKey:     env("MAPS_API_KEY", fc.MapsKey),
		AdminToken:  env("ADMIN_TOKEN", ""),
		RPS:         atoi("HOSTAWAY_RPS", orInt(fc.Hostaway.RPS, 5)),
		Workers:     atoi("SYNC_WORKERS", orInt(fc.SyncWorkers, 8)),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", orInt(fc.CacheTTLSeconds, 900))) * time.Second,
	}
	if c.AccountID == "" || c.APISecret == "" {
		log.Warn().Msg("HOSTAWAY_ACCOUNT_ID or HOSTAWAY_API_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
